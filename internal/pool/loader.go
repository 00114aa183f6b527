// Package pool loads the texture, mesh and face buffers stored in a pool chunk
// and exposes them through independent read cursors.
package pool

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dcrodman/hodpool/internal/core"
	"github.com/dcrodman/hodpool/internal/iff"
)

// ErrSegmentTooLarge is returned when a segment declares a size above the
// configured limit.
var ErrSegmentTooLarge = errors.New("segment exceeds the maximum segment size")

type options struct {
	logger         logrus.FieldLogger
	concurrent     bool
	maxSegmentSize int
}

// Option configures how segments are read and decoded.
type Option func(*options)

// WithLogger sets the logger that receives decode diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConcurrency decodes the three segments on separate goroutines.
func WithConcurrency(concurrent bool) Option {
	return func(o *options) { o.concurrent = concurrent }
}

// WithMaxSegmentSize bounds the compressed and decompressed size of a segment.
func WithMaxSegmentSize(n int) Option {
	return func(o *options) { o.maxSegmentSize = n }
}

// MaxChunkSize returns the largest pool chunk payload whose segments can all fit
// within maxSegmentSize: the type word plus three length pairs and payloads. It
// returns 0 when maxSegmentSize is 0 or less, meaning no limit.
func MaxChunkSize(maxSegmentSize int) uint64 {
	if maxSegmentSize <= 0 {
		return 0
	}
	return 4 + NumKinds*(8+uint64(maxSegmentSize))
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:         core.DiscardLogger(),
		maxSegmentSize: core.DefaultMaxSegmentSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Read reads a pool chunk payload: a type word followed by the texture, mesh
// and face segments.
func Read(r *iff.Reader, attrs iff.ChunkAttributes, opts ...Option) (*Bundle, error) {
	o := newOptions(opts)
	o.logger = o.logger.WithField("chunk", attrs.ID)

	typ, err := r.ReadUInt32()
	if err != nil {
		return nil, fmt.Errorf("reading pool type: %w", err)
	}

	compressed, err := readSegments(r, o)
	if err != nil {
		return nil, err
	}
	b := NewBundle(typ, decodeSegments(compressed, o))
	b.Name = attrs.Name
	return b, nil
}

// ReadSegments reads the texture, mesh and face segments from r and decodes
// them. Each segment is a little-endian compressed length, a little-endian
// decompressed length and the compressed payload.
//
// Errors are only returned for reads from r. A payload that decodes short of its
// declared size is logged and reported through Bundle.Integrity.
func ReadSegments(r io.Reader, opts ...Option) (*Bundle, error) {
	o := newOptions(opts)

	ir, ok := r.(*iff.Reader)
	if !ok {
		ir = iff.NewReader(r)
	}
	compressed, err := readSegments(ir, o)
	if err != nil {
		return nil, err
	}
	return NewBundle(0, decodeSegments(compressed, o)), nil
}

func readSegments(r *iff.Reader, o *options) ([NumKinds]CompressedSegment, error) {
	var segments [NumKinds]CompressedSegment
	for _, kind := range Kinds {
		s, err := readSegment(r, kind, o.maxSegmentSize)
		if err != nil {
			return segments, err
		}
		segments[kind] = s
	}
	return segments, nil
}

func readSegment(r *iff.Reader, kind Kind, maxSize int) (CompressedSegment, error) {
	s := CompressedSegment{Kind: kind}

	var err error
	if s.CompressedSize, err = r.ReadUInt32(); err != nil {
		return s, fmt.Errorf("reading %s compressed length: %w", kind, err)
	}
	if s.DecompressedSize, err = r.ReadUInt32(); err != nil {
		return s, fmt.Errorf("reading %s decompressed length: %w", kind, err)
	}

	if maxSize > 0 {
		if uint64(s.CompressedSize) > uint64(maxSize) || uint64(s.DecompressedSize) > uint64(maxSize) {
			return s, fmt.Errorf("%s segment (%d compressed, %d decompressed bytes): %w",
				kind, s.CompressedSize, s.DecompressedSize, ErrSegmentTooLarge)
		}
	}

	if s.Payload, err = r.ReadBytes(int(s.CompressedSize)); err != nil {
		return s, fmt.Errorf("reading %s payload of %d bytes: %w", kind, s.CompressedSize, err)
	}
	return s, nil
}

// decodeSegments decodes each segment independently. A short decode in one
// segment has no effect on the others.
func decodeSegments(compressed [NumKinds]CompressedSegment, o *options) [NumKinds]Segment {
	var segments [NumKinds]Segment
	if o.concurrent {
		var g errgroup.Group
		for i := range compressed {
			i := i
			g.Go(func() error {
				segments[i] = compressed[i].Decode()
				return nil
			})
		}
		// Decoding cannot fail.
		_ = g.Wait()
	} else {
		for i := range compressed {
			segments[i] = compressed[i].Decode()
		}
	}

	for _, s := range segments {
		fields := logrus.Fields{
			"segment":  s.Kind,
			"declared": s.Declared,
			"decoded":  len(s.Data),
			"halt":     s.Result.Halt,
		}
		if s.Truncated() {
			o.logger.WithFields(fields).Warn("segment decoded short of its declared size")
		} else {
			o.logger.WithFields(fields).Debug("decoded segment")
		}
	}
	return segments
}

// Package iff reads the chunked container that pool data is stored in.
//
// Every chunk starts with a 4-byte ASCII tag and a big-endian 32-bit body size.
// FORM chunks carry a 4-byte form type followed by nested chunks. NRML chunks
// carry a 4-byte id, a big-endian version, and a length-prefixed name before
// their payload. Any other tag is a plain chunk whose whole body is payload.
// Bodies of odd length are followed by one pad byte. Values inside chunk payloads
// are little-endian.
package iff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"

	"github.com/dcrodman/hodpool/internal/core/bytes"
)

const (
	// FormTag marks a chunk that groups other chunks.
	FormTag = "FORM"
	// NormalTag marks a chunk with a version and a name ahead of its payload.
	NormalTag = "NRML"

	headerSize = 8
)

var (
	// ErrChunkOverrun is returned when a chunk claims more bytes than its parent holds.
	ErrChunkOverrun = errors.New("chunk extends past the end of its parent")
	// ErrStop can be returned by a WalkFunc to end a walk early without an error.
	ErrStop = errors.New("stop walking")
)

// ChunkAttributes describes the chunk a Reader is positioned in.
type ChunkAttributes struct {
	// Tag is the 4-byte tag from the chunk header (FORM, NRML, or a plain id).
	Tag string
	// ID is the form type for FORM chunks, the chunk id for NRML chunks and the
	// tag itself for plain chunks.
	ID string
	// Size is the size of the chunk body as declared in the header.
	Size    uint32
	Version uint32
	Name    string
	// PayloadSize is the number of bytes left in the chunk after its header fields.
	PayloadSize uint32
	// Offset is the position of the chunk header within the outermost stream.
	Offset int64
}

// IsForm reports whether the chunk holds nested chunks.
func (a ChunkAttributes) IsForm() bool { return a.Tag == FormTag }

func (a ChunkAttributes) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s %s %q v%d (%d bytes @ %#x)", a.Tag, a.ID, a.Name, a.Version, a.PayloadSize, a.Offset)
	}
	return fmt.Sprintf("%s %s (%d bytes @ %#x)", a.Tag, a.ID, a.PayloadSize, a.Offset)
}

// Reader reads typed values from a container stream and tracks its position.
type Reader struct {
	r   io.Reader
	pos int64
	buf [4]byte
}

// NewReader wraps r. The position of the first byte read is base.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func newReaderAt(r io.Reader, base int64) *Reader {
	return &Reader{r: r, pos: base}
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int64 { return r.pos }

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *Reader) readFull(p []byte) error {
	if _, err := io.ReadFull(r, p); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadUInt32 reads a little-endian uint32.
func (r *Reader) ReadUInt32() (uint32, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

// ReadUInt32BE reads a big-endian uint32, the byte order used by chunk headers.
func (r *Reader) ReadUInt32BE() (uint32, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// ReadID reads a 4-byte tag.
func (r *Reader) ReadID() (string, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return "", err
	}
	return string(r.buf[:4]), nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read of %d bytes", n)
	}
	b := make([]byte, n)
	if err := r.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	copied, err := io.CopyN(io.Discard, r, n)
	if err != nil {
		if errors.Is(err, io.EOF) && copied < n {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadChunk reads a chunk header, plus the form type or NRML fields when present.
// It returns io.EOF if the stream ends cleanly before a new header.
func (r *Reader) ReadChunk() (ChunkAttributes, error) {
	attrs := ChunkAttributes{Offset: r.pos}

	n, err := io.ReadFull(r, r.buf[:4])
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return attrs, io.EOF
	case err != nil:
		return attrs, fmt.Errorf("reading chunk tag at %#x: %w", attrs.Offset, io.ErrUnexpectedEOF)
	}
	attrs.Tag = string(r.buf[:4])

	if attrs.Size, err = r.ReadUInt32BE(); err != nil {
		return attrs, fmt.Errorf("reading size of %s chunk: %w", attrs.Tag, err)
	}
	attrs.ID = attrs.Tag
	attrs.PayloadSize = attrs.Size

	switch attrs.Tag {
	case FormTag:
		if attrs.Size < 4 {
			return attrs, fmt.Errorf("%s chunk of %d bytes: %w", attrs.Tag, attrs.Size, ErrChunkOverrun)
		}
		if attrs.ID, err = r.ReadID(); err != nil {
			return attrs, fmt.Errorf("reading form type: %w", err)
		}
		attrs.PayloadSize -= 4

	case NormalTag:
		if err := r.readNormalHeader(&attrs); err != nil {
			return attrs, err
		}
	}
	return attrs, nil
}

func (r *Reader) readNormalHeader(attrs *ChunkAttributes) error {
	if attrs.Size < 12 {
		return fmt.Errorf("%s chunk of %d bytes: %w", attrs.Tag, attrs.Size, ErrChunkOverrun)
	}

	var err error
	if attrs.ID, err = r.ReadID(); err != nil {
		return fmt.Errorf("reading chunk id: %w", err)
	}
	if attrs.Version, err = r.ReadUInt32BE(); err != nil {
		return fmt.Errorf("reading version of %s: %w", attrs.ID, err)
	}
	nameLen, err := r.ReadUInt32BE()
	if err != nil {
		return fmt.Errorf("reading name length of %s: %w", attrs.ID, err)
	}
	if nameLen > attrs.Size-12 {
		return fmt.Errorf("name of %s (%d bytes): %w", attrs.ID, nameLen, ErrChunkOverrun)
	}
	name, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return fmt.Errorf("reading name of %s: %w", attrs.ID, err)
	}
	if attrs.Name, err = decodeName(name); err != nil {
		return fmt.Errorf("decoding name of %s: %w", attrs.ID, err)
	}
	attrs.PayloadSize = attrs.Size - 12 - nameLen
	return nil
}

// Names are stored as Windows-1252 and may be NUL padded.
func decodeName(b []byte) (string, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(bytes.StripPadding(b))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

package pool

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/go-test/deep"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dcrodman/hodpool/internal/core/xpress"
	"github.com/dcrodman/hodpool/internal/iff"
)

// literals compresses data as a stream of literal tokens only.
func literals(data []byte) []byte {
	var out []byte
	for len(data) > 0 {
		n := 31
		if n > len(data) {
			n = len(data)
		}
		out = append(out, 0, 0, 0, 0)
		out = append(out, data[:n]...)
		data = data[n:]
	}
	return out
}

func appendSegment(dst []byte, payload []byte, declared uint32) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = binary.LittleEndian.AppendUint32(dst, declared)
	return append(dst, payload...)
}

var (
	textureData = []byte("texture data: 0123456789abcdefghijklmnopqrstuvwxyz")
	meshData    = []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0x40, 0x01, 0x00}
	// One literal followed by a near token repeating it 5 times.
	faceCompressed = []byte{0x02, 0x00, 0x00, 0x00, 0x07, 0x0A, 0x00}
	faceData       = []byte{7, 7, 7, 7, 7, 7}
)

func segmentStream() []byte {
	var s []byte
	s = appendSegment(s, literals(textureData), uint32(len(textureData)))
	s = appendSegment(s, literals(meshData), uint32(len(meshData)))
	s = appendSegment(s, faceCompressed, uint32(len(faceData)))
	return s
}

func TestReadSegments(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		b, err := ReadSegments(bytes.NewReader(segmentStream()), WithConcurrency(concurrent))
		if err != nil {
			t.Fatalf("ReadSegments() returned an unexpected error: %v", err)
		}

		if diff := cmp.Diff(textureData, b.Data(Texture)); diff != "" {
			t.Errorf("texture mismatch; diff:\n%s", diff)
		}
		if diff := cmp.Diff(meshData, b.Data(Mesh)); diff != "" {
			t.Errorf("mesh mismatch; diff:\n%s", diff)
		}
		if diff := cmp.Diff(faceData, b.Data(Face)); diff != "" {
			t.Errorf("face mismatch; diff:\n%s", diff)
		}
		if short := b.Integrity(); len(short) != 0 {
			t.Errorf("Integrity() = %v, want no short segments", short)
		}
		if b.Type != 0 {
			t.Errorf("Type = %d, want 0 for a bare segment stream", b.Type)
		}
	}
}

func TestReadSegments_TruncatedSegmentIsIsolated(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var s []byte
	s = appendSegment(s, literals(textureData), uint32(len(textureData)))
	// The mesh payload loses its last 3 bytes but still declares the full size.
	cut := literals(meshData)
	s = appendSegment(s, cut[:len(cut)-3], uint32(len(meshData)))
	s = appendSegment(s, faceCompressed, uint32(len(faceData)))

	b, err := ReadSegments(bytes.NewReader(s), WithLogger(logger), WithConcurrency(true))
	if err != nil {
		t.Fatalf("ReadSegments() returned an unexpected error: %v", err)
	}

	if diff := cmp.Diff(meshData[:len(meshData)-3], b.Data(Mesh)); diff != "" {
		t.Errorf("mesh should be a prefix of the full data; diff:\n%s", diff)
	}
	if diff := cmp.Diff(textureData, b.Data(Texture)); diff != "" {
		t.Errorf("texture mismatch; diff:\n%s", diff)
	}
	if diff := cmp.Diff(faceData, b.Data(Face)); diff != "" {
		t.Errorf("face mismatch; diff:\n%s", diff)
	}

	short := b.Integrity()
	if len(short) != 1 || short[0].Kind != Mesh {
		t.Fatalf("Integrity() = %+v, want only the mesh segment", short)
	}
	if short[0].Result.Halt != xpress.HaltEndOfInput {
		t.Errorf("mesh halt = %v, want %v", short[0].Result.Halt, xpress.HaltEndOfInput)
	}

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
			if entry.Data["segment"] != Mesh {
				t.Errorf("warning logged for segment %v, want mesh", entry.Data["segment"])
			}
		}
	}
	if warnings != 1 {
		t.Errorf("logged %d warnings, want 1", warnings)
	}
}

func TestReadSegments_Errors(t *testing.T) {
	full := segmentStream()
	tests := []struct {
		name    string
		stream  []byte
		opts    []Option
		wantErr error
	}{
		{
			name:    "empty container",
			stream:  nil,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "missing face segment",
			stream:  full[:len(full)-len(faceCompressed)-8],
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "short payload",
			stream:  full[:len(full)-1],
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "segment above the limit",
			stream:  full,
			opts:    []Option{WithMaxSegmentSize(16)},
			wantErr: ErrSegmentTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSegments(bytes.NewReader(tt.stream), tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadSegments() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRead_PoolChunk(t *testing.T) {
	payload := binary.LittleEndian.AppendUint32(nil, 0x2A)
	payload = append(payload, segmentStream()...)
	container := iff.AppendForm(nil, "HVMD", iff.AppendNormal(nil, "POOL", 1, "Pool", payload))

	var bundles []*Bundle
	err := iff.Walk(bytes.NewReader(container), func(attrs iff.ChunkAttributes, r *iff.Reader) error {
		if attrs.ID != "POOL" {
			return nil
		}
		b, err := Read(r, attrs)
		if err != nil {
			return err
		}
		bundles = append(bundles, b)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() returned an unexpected error: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("read %d bundles, want 1", len(bundles))
	}

	b := bundles[0]
	if b.Type != 0x2A || b.Name != "Pool" {
		t.Errorf("bundle type/name = %#x/%q, want 0x2a/Pool", b.Type, b.Name)
	}
	if diff := deep.Equal([][]byte{b.Data(Texture), b.Data(Mesh), b.Data(Face)}, [][]byte{textureData, meshData, faceData}); diff != nil {
		t.Error(diff)
	}
}

func TestBundle_IndependentCursors(t *testing.T) {
	b, err := ReadSegments(bytes.NewReader(segmentStream()))
	if err != nil {
		t.Fatalf("ReadSegments() returned an unexpected error: %v", err)
	}

	x, err := b.Mesh().ReadFloat32()
	if err != nil || x != 1 {
		t.Fatalf("Mesh().ReadFloat32() = %v, %v; want 1", x, err)
	}
	if b.Mesh().Pos() != 4 {
		t.Errorf("mesh cursor at %d, want 4", b.Mesh().Pos())
	}
	if b.Texture().Pos() != 0 || b.Face().Pos() != 0 {
		t.Errorf("reading the mesh moved another cursor: texture=%d face=%d", b.Texture().Pos(), b.Face().Pos())
	}
	if b.Cursor(Mesh) != b.Mesh() {
		t.Error("Cursor(Mesh) should return the same cursor as Mesh()")
	}

	// A second bundle over the same segments gets its own cursors.
	other := NewBundle(b.Type, b.Segments())
	if other.Mesh().Pos() != 0 {
		t.Errorf("new bundle mesh cursor at %d, want 0", other.Mesh().Pos())
	}
	if _, err := other.Mesh().ReadUint32(); err != nil {
		t.Fatalf("ReadUint32() returned an unexpected error: %v", err)
	}
	if b.Mesh().Pos() != 4 || other.Mesh().Pos() != 4 {
		t.Errorf("cursor positions = %d/%d, want 4/4", b.Mesh().Pos(), other.Mesh().Pos())
	}
	if _, err := other.Mesh().ReadUint16(); err != nil {
		t.Fatalf("ReadUint16() returned an unexpected error: %v", err)
	}
	if b.Mesh().Pos() != 4 {
		t.Errorf("original bundle cursor moved to %d", b.Mesh().Pos())
	}
}

func TestKind_String(t *testing.T) {
	if diff := deep.Equal([]string{Texture.String(), Mesh.String(), Face.String(), Kind(7).String()},
		[]string{"texture", "mesh", "face", "Kind(7)"}); diff != nil {
		t.Error(diff)
	}
}

func TestMaxChunkSize(t *testing.T) {
	if got := MaxChunkSize(0); got != 0 {
		t.Errorf("MaxChunkSize(0) = %d, want 0", got)
	}
	if got := MaxChunkSize(100); got != 4+3*108 {
		t.Errorf("MaxChunkSize(100) = %d, want %d", got, 4+3*108)
	}
	// A chunk at exactly the limit reads; its segments are each at the cap.
	payload := binary.LittleEndian.AppendUint32(nil, 1)
	for range Kinds {
		payload = appendSegment(payload, make([]byte, 100), 100)
	}
	if uint64(len(payload)) != MaxChunkSize(100) {
		t.Errorf("largest valid payload is %d bytes, MaxChunkSize(100) = %d", len(payload), MaxChunkSize(100))
	}
	if _, err := Read(iff.NewReader(bytes.NewReader(payload)), iff.ChunkAttributes{}, WithMaxSegmentSize(100)); err != nil {
		t.Errorf("Read() of a payload at the limit returned an unexpected error: %v", err)
	}
}

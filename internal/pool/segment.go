package pool

import (
	"fmt"

	"github.com/dcrodman/hodpool/internal/core/xpress"
)

// Kind identifies one of the three buffers held by a pool.
type Kind int

const (
	Texture Kind = iota
	Mesh
	Face

	// NumKinds is the number of segments in every pool.
	NumKinds = 3
)

// Kinds lists the segment kinds in the order they are stored.
var Kinds = [NumKinds]Kind{Texture, Mesh, Face}

func (k Kind) String() string {
	switch k {
	case Texture:
		return "texture"
	case Mesh:
		return "mesh"
	case Face:
		return "face"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CompressedSegment is a segment as stored in the container, before decoding.
type CompressedSegment struct {
	Kind             Kind
	CompressedSize   uint32
	DecompressedSize uint32
	Payload          []byte
}

// Decode expands the payload. It never fails; check Truncated on the result.
func (c CompressedSegment) Decode() Segment {
	data, res := xpress.DecompressResult(c.Payload, c.DecompressedSize)
	return Segment{
		Kind:       c.Kind,
		Compressed: c.CompressedSize,
		Declared:   c.DecompressedSize,
		Data:       data,
		Result:     res,
	}
}

// Segment is a decoded buffer. Data may be shorter than Declared if the
// compressed payload was truncated or malformed. Data must not be modified.
type Segment struct {
	Kind       Kind
	Compressed uint32
	Declared   uint32
	Data       []byte
	Result     xpress.Result
}

// Truncated reports whether fewer bytes were decoded than were declared.
func (s Segment) Truncated() bool {
	return len(s.Data) < int(s.Declared)
}

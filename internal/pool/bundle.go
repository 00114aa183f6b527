package pool

// Bundle owns the three decoded buffers of a pool along with one cursor per
// buffer. Cursors belong to the bundle that created them; two bundles built
// over the same segments still read independently.
type Bundle struct {
	// Type is the word stored ahead of the segments in a pool chunk. It is 0
	// for bundles read from a bare segment stream.
	Type uint32
	// Name is the name of the chunk the bundle was read from, if any.
	Name string

	segments [NumKinds]Segment
	cursors  [NumKinds]*Cursor
}

// NewBundle builds a bundle over already decoded segments, indexed by Kind.
func NewBundle(typ uint32, segments [NumKinds]Segment) *Bundle {
	b := &Bundle{Type: typ, segments: segments}
	for i := range segments {
		b.cursors[i] = NewCursor(segments[i].Data)
	}
	return b
}

// Texture returns the cursor over the texture buffer.
func (b *Bundle) Texture() *Cursor { return b.cursors[Texture] }

// Mesh returns the cursor over the mesh buffer.
func (b *Bundle) Mesh() *Cursor { return b.cursors[Mesh] }

// Face returns the cursor over the face buffer.
func (b *Bundle) Face() *Cursor { return b.cursors[Face] }

// Cursor returns the cursor for k. It panics if k is not one of Kinds.
func (b *Bundle) Cursor(k Kind) *Cursor { return b.cursors[k] }

// Segment returns the decoded segment for k. It panics if k is not one of Kinds.
func (b *Bundle) Segment(k Kind) Segment { return b.segments[k] }

// Data returns the decoded bytes for k. The slice must not be modified.
func (b *Bundle) Data(k Kind) []byte { return b.segments[k].Data }

// Segments returns all three segments in storage order.
func (b *Bundle) Segments() [NumKinds]Segment { return b.segments }

// Integrity returns the segments that decoded to fewer bytes than declared.
// A non-empty result is a data-integrity warning, not a failure.
func (b *Bundle) Integrity() []Segment {
	var short []Segment
	for _, s := range b.segments {
		if s.Truncated() {
			short = append(short, s)
		}
	}
	return short
}

package pool

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dcrodman/hodpool/internal/core/bytes"
)

// Cursor reads little-endian values sequentially from one decoded buffer. A
// Cursor is not safe for concurrent use; different cursors over the same
// buffer are.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the offset of the next byte to be read.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Reset moves the cursor back to the start of the buffer.
func (c *Cursor) Reset() { c.pos = 0 }

// next returns the next n bytes and advances past them, or fails without moving.
func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read of %d bytes", n)
	}
	if n > c.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadUint8 reads one byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadInt8 reads one signed byte.
func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a little-endian uint16.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadInt16 reads a little-endian int16.
func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a little-endian uint32.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a little-endian uint64.
func (c *Cursor) ReadUint64() (uint64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFloat32 reads a little-endian IEEE 754 float32.
func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a little-endian IEEE 754 float64.
func (c *Cursor) ReadFloat64() (float64, error) {
	v, err := c.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Peek returns a copy of the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	return append([]byte(nil), c.data[c.pos:c.pos+n]...), nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

// ReadStruct fills the struct pointed to by v from the next bytes, field by
// field in declaration order. v must have a fixed binary size.
func (c *Cursor) ReadStruct(v interface{}) error {
	size := bytes.StructSize(v)
	if size < 0 {
		return fmt.Errorf("%T has no fixed size", v)
	}
	if size > c.Remaining() {
		return io.ErrUnexpectedEOF
	}
	n, err := bytes.StructFromBytes(c.data[c.pos:c.pos+size], v)
	if err != nil {
		return err
	}
	c.pos += n
	return nil
}

// Read implements io.Reader.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.Remaining() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, c.data[c.pos:])
	c.pos += n
	return n, nil
}

var errNegativePosition = errors.New("seek to a negative position")

// Seek implements io.Seeker. Seeking past the end of the buffer is an error.
func (c *Cursor) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(c.pos) + offset
	case io.SeekEnd:
		abs = int64(len(c.data)) + offset
	default:
		return int64(c.pos), fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return int64(c.pos), errNegativePosition
	}
	if abs > int64(len(c.data)) {
		return int64(c.pos), io.ErrUnexpectedEOF
	}
	c.pos = int(abs)
	return abs, nil
}

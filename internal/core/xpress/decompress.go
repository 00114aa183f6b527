package xpress

import "encoding/binary"

// indicatorBits is the number of control bits taken from each indicator word. The
// top bit of every word is never tested; reaching it triggers a reload instead.
const indicatorBits = 31

// Shape identifies which of the five match token layouts a lead byte selects.
type Shape int

const (
	// ShapeShort is 1 byte: length 3, 6-bit offset. Lead byte xxxxxx00.
	ShapeShort Shape = iota
	// ShapeNear is 2 bytes: 4-bit length, 10-bit offset. Lead byte xxxxxx10.
	ShapeNear
	// ShapeMid is 2 bytes: length 3, 14-bit offset. Lead byte xxxxxx01.
	ShapeMid
	// ShapeLong is 4 bytes: 8-bit length, 21-bit offset. Lead byte xxxxx111.
	ShapeLong
	// ShapeFar is 3 bytes: 5-bit length, 16-bit offset. Lead byte xxxxx011.
	ShapeFar
)

func (s Shape) String() string {
	switch s {
	case ShapeShort:
		return "short"
	case ShapeNear:
		return "near"
	case ShapeMid:
		return "mid"
	case ShapeLong:
		return "long"
	case ShapeFar:
		return "far"
	default:
		return "unknown"
	}
}

// Token is a decoded back-reference. Offset is the distance behind the byte
// preceding the write position, so an offset of 0 repeats the previous byte.
type Token struct {
	Shape  Shape
	Length int
	Offset int
}

// DecodeToken decodes the match token at the start of src and returns it along
// with the number of bytes it occupies. It returns false if src is too short to
// hold the token. At least 2 bytes are always required, even for the 1-byte shape.
//
// The lead byte's low bits pick the layout, tested in this order:
//
//	xxxxxx00  length 3,                      offset b0>>2
//	xxxxxx10  length ((b0>>2)&0xF)+3,        offset b1<<2 | b0>>6
//	xxxxxx01  length 3,                      offset b1<<6 | b0>>2
//	xxxxx111  length ((b3&7)<<5 | b0>>3)+3,  offset b3<<13 | b2<<5 | b1>>3
//	xxxxx011  length (b0>>3)+3,              offset b2<<8 | b1
//
// A lead byte ending in 111 also ends in 11, so the 4-byte layout must be tested
// before the 3-byte one.
func DecodeToken(src []byte) (Token, int, bool) {
	if len(src) < 2 {
		return Token{}, 0, false
	}

	b0 := int(src[0])
	switch {
	case b0&0b11 == 0b00:
		return Token{Shape: ShapeShort, Length: 3, Offset: b0 >> 2}, 1, true

	case b0&0b11 == 0b10:
		return Token{
			Shape:  ShapeNear,
			Length: (b0>>2)&0xF + 3,
			Offset: int(src[1])<<2 | b0>>6,
		}, 2, true

	case b0&0b11 == 0b01:
		return Token{Shape: ShapeMid, Length: 3, Offset: int(src[1])<<6 | b0>>2}, 2, true

	case b0&0b111 == 0b111:
		if len(src) < 4 {
			return Token{}, 0, false
		}
		b1, b2, b3 := int(src[1]), int(src[2]), int(src[3])
		return Token{
			Shape:  ShapeLong,
			Length: ((b3&0b111)<<5 | b0>>3) + 3,
			Offset: b3<<13 | b2<<5 | b1>>3,
		}, 4, true

	default: // xxxxx011
		if len(src) < 3 {
			return Token{}, 0, false
		}
		return Token{
			Shape:  ShapeFar,
			Length: b0>>3 + 3,
			Offset: int(src[2])<<8 | int(src[1]),
		}, 3, true
	}
}

type decompressor struct {
	// bitPos is the indicator bit tested for the current token. It starts one
	// short of indicatorBits so the first step loads an indicator word.
	bitPos    int
	indicator uint32

	srcPos int
	src    []byte

	dstPos int
	dst    []byte

	halt       Halt
	indicators int
	literals   int
	matches    int
}

func newDecompressor(src []byte, size uint32) *decompressor {
	return &decompressor{
		bitPos: indicatorBits - 1,
		src:    src,
		dst:    make([]byte, size),
	}
}

// decompress runs the state machine until the output is full, the input is
// exhausted, or a token cannot be honoured, and returns the bytes produced.
func (d *decompressor) decompress() []byte {
	d.halt = d.run()
	return d.dst[:d.dstPos]
}

func (d *decompressor) run() Halt {
	for d.dstPos < len(d.dst) && d.srcPos < len(d.src) {
		if !d.nextBit() {
			return HaltShortIndicator
		}

		if d.indicator>>uint(d.bitPos)&1 == 0 {
			if d.srcPos >= len(d.src) {
				return HaltShortLiteral
			}
			d.dst[d.dstPos] = d.src[d.srcPos]
			d.srcPos++
			d.dstPos++
			d.literals++
			continue
		}

		token, n, ok := DecodeToken(d.src[d.srcPos:])
		if !ok {
			return HaltShortToken
		}
		d.srcPos += n
		d.matches++

		if halt, ok := d.copyMatch(token); !ok {
			return halt
		}
	}

	if d.dstPos >= len(d.dst) {
		return HaltComplete
	}
	return HaltEndOfInput
}

// nextBit advances to the next indicator bit, loading a fresh word when the
// previous one has used up its 31 control bits.
func (d *decompressor) nextBit() bool {
	d.bitPos++
	if d.bitPos == indicatorBits {
		if len(d.src)-d.srcPos < 4 {
			return false
		}
		d.indicator = binary.LittleEndian.Uint32(d.src[d.srcPos:])
		d.srcPos += 4
		d.bitPos = 0
		d.indicators++
	}
	return true
}

// copyMatch replays token one byte at a time. The source may overlap bytes
// written earlier in the same copy, which is how runs are encoded.
func (d *decompressor) copyMatch(token Token) (Halt, bool) {
	for i := 0; i < token.Length; i++ {
		srcIndex := d.dstPos - token.Offset - 1
		if srcIndex < 0 {
			return HaltBadOffset, false
		}
		if d.dstPos >= len(d.dst) {
			return HaltComplete, false
		}
		d.dst[d.dstPos] = d.dst[srcIndex]
		d.dstPos++
	}
	return 0, true
}

func (d *decompressor) result() Result {
	return Result{
		Halt:       d.halt,
		Declared:   uint32(len(d.dst)),
		Decoded:    d.dstPos,
		Consumed:   d.srcPos,
		Indicators: d.indicators,
		Literals:   d.literals,
		Matches:    d.matches,
	}
}

// Package xpress decodes the LZ-style compression used for the texture, mesh and
// face buffers stored in pool chunks.
//
// A compressed stream is a sequence of 32-bit little-endian indicator words, each
// followed by the tokens it controls. Only bits 0 through 30 of an indicator are
// used: a clear bit means the next input byte is a literal, a set bit means the
// next input bytes hold a match token (a back-reference into the output written
// so far). Match tokens come in five shapes selected by the low bits of their lead
// byte; see DecodeToken.
//
// Decoding never fails. Input that runs out mid-token, or a token that points
// before the start of the output, simply ends the decode early and the caller gets
// back whatever was produced up to that point.
package xpress

// Decompress expands src into at most size bytes. The returned slice may be
// shorter than size if the input was truncated or malformed.
func Decompress(src []byte, size uint32) []byte {
	d := newDecompressor(src, size)
	return d.decompress()
}

// DecompressResult behaves like Decompress but also reports how the decode ended.
func DecompressResult(src []byte, size uint32) ([]byte, Result) {
	d := newDecompressor(src, size)
	dst := d.decompress()
	return dst, d.result()
}

// Halt describes the transition that stopped the decoder.
type Halt int

const (
	// HaltComplete means the output buffer was filled.
	HaltComplete Halt = iota
	// HaltEndOfInput means the input ran out on a token boundary.
	HaltEndOfInput
	// HaltShortIndicator means fewer than 4 bytes were left for an indicator word.
	HaltShortIndicator
	// HaltShortLiteral means a literal was signalled with no input byte left.
	HaltShortLiteral
	// HaltShortToken means a match token was cut off by the end of the input.
	HaltShortToken
	// HaltBadOffset means a match referenced a byte before the start of the output.
	HaltBadOffset
)

func (h Halt) String() string {
	switch h {
	case HaltComplete:
		return "complete"
	case HaltEndOfInput:
		return "end of input"
	case HaltShortIndicator:
		return "short indicator"
	case HaltShortLiteral:
		return "short literal"
	case HaltShortToken:
		return "short token"
	case HaltBadOffset:
		return "bad offset"
	default:
		return "unknown"
	}
}

// Result summarizes a single decode.
type Result struct {
	Halt Halt
	// Declared is the output size the caller asked for.
	Declared uint32
	// Decoded is the number of output bytes actually produced.
	Decoded int
	// Consumed is the number of input bytes read, indicator words included.
	Consumed   int
	Indicators int
	Literals   int
	Matches    int
}

// Truncated reports whether fewer bytes were produced than were declared.
func (r Result) Truncated() bool {
	return r.Decoded < int(r.Declared)
}

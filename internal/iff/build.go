package iff

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// AppendChunk appends a plain chunk with the given tag and body to dst.
func AppendChunk(dst []byte, tag string, body []byte) []byte {
	dst = appendTag(dst, tag)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	dst = append(dst, body...)
	if len(body)%2 == 1 {
		dst = append(dst, 0)
	}
	return dst
}

// AppendForm appends a FORM chunk of the given type holding the already
// encoded children.
func AppendForm(dst []byte, formType string, children []byte) []byte {
	body := appendTag(make([]byte, 0, 4+len(children)), formType)
	return AppendChunk(dst, FormTag, append(body, children...))
}

// AppendNormal appends an NRML chunk with name encoded as Windows-1252. It panics
// if name has characters outside that code page.
func AppendNormal(dst []byte, id string, version uint32, name string, payload []byte) []byte {
	encoded, err := charmap.Windows1252.NewEncoder().String(name)
	if err != nil {
		panic(fmt.Sprintf("iff: name %q: %v", name, err))
	}

	body := appendTag(nil, id)
	body = binary.BigEndian.AppendUint32(body, version)
	body = binary.BigEndian.AppendUint32(body, uint32(len(encoded)))
	body = append(body, encoded...)
	body = append(body, payload...)
	return AppendChunk(dst, NormalTag, body)
}

func appendTag(dst []byte, tag string) []byte {
	if len(tag) != 4 {
		panic(fmt.Sprintf("iff: tag %q is not 4 bytes", tag))
	}
	return append(dst, tag...)
}

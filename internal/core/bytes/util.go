package bytes

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// StripPadding returns a slice of b without the trailing 0s.
func StripPadding(b []byte) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0 {
			return b[:i+1]
		}
	}
	return []byte{}
}

// StructSize returns the number of bytes StructFromBytes will consume to fill
// targetStruct, or -1 if it contains variable-sized fields.
func StructSize(targetStruct interface{}) int {
	return binary.Size(targetStruct)
}

// StructFromBytes populates the struct pointed to by targetStruct by reading in a
// stream of bytes and filling the values in sequential order. It returns the number
// of bytes consumed. Blank (_) fields are skipped over; any other unexported field
// is an error.
func StructFromBytes(data []byte, targetStruct interface{}) (int, error) {
	targetVal := reflect.ValueOf(targetStruct)

	if valKind := targetVal.Kind(); valKind != reflect.Ptr || targetVal.Elem().Kind() != reflect.Struct {
		return 0, fmt.Errorf("StructFromBytes(): targetStruct must be a ptr to struct, got: %s", valKind)
	}

	reader := bytes.NewReader(data)
	val := targetVal.Elem()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		structField := val.Type().Field(i)

		if structField.Name == "_" {
			size := binary.Size(reflect.Zero(structField.Type).Interface())
			if size < 0 {
				return len(data) - reader.Len(), fmt.Errorf("padding field %d has no fixed size", i)
			}
			if size > reader.Len() {
				return len(data) - reader.Len(), fmt.Errorf("skipping padding field %d: %w", i, io.ErrUnexpectedEOF)
			}
			_, _ = reader.Seek(int64(size), io.SeekCurrent)
			continue
		}
		if !structField.IsExported() {
			return len(data) - reader.Len(), fmt.Errorf("field %s is not exported", structField.Name)
		}

		var err error
		switch field.Kind() {
		case reflect.Ptr:
			err = binary.Read(reader, binary.LittleEndian, field.Interface())
		default:
			err = binary.Read(reader, binary.LittleEndian, field.Addr().Interface())
		}
		if err != nil {
			return len(data) - reader.Len(), fmt.Errorf("reading field %s: %w", val.Type().Field(i).Name, err)
		}
	}
	return len(data) - reader.Len(), nil
}

package iff

import (
	"errors"
	"fmt"
	"io"
)

// WalkFunc is called for every chunk that is not a FORM. r is bounded to the
// chunk payload; whatever the function leaves unread is skipped.
type WalkFunc func(attrs ChunkAttributes, r *Reader) error

// Walk visits the chunks in r depth-first, descending into FORM chunks. Returning
// ErrStop from fn ends the walk without an error.
func Walk(r io.Reader, fn WalkFunc) error {
	err := walk(NewReader(r), -1, fn)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// List returns the attributes of every non-FORM chunk in r.
func List(r io.Reader) ([]ChunkAttributes, error) {
	var chunks []ChunkAttributes
	err := Walk(r, func(attrs ChunkAttributes, _ *Reader) error {
		chunks = append(chunks, attrs)
		return nil
	})
	return chunks, err
}

// walk reads chunks from r until limit bytes have been consumed, or until the
// stream ends when limit is negative.
func walk(r *Reader, limit int64, fn WalkFunc) error {
	start := r.Pos()
	for {
		if limit >= 0 && r.Pos()-start >= limit {
			return nil
		}

		attrs, err := r.ReadChunk()
		if errors.Is(err, io.EOF) {
			if limit < 0 {
				return nil
			}
			return fmt.Errorf("reading chunk at %#x: %w", r.Pos(), io.ErrUnexpectedEOF)
		}
		if err != nil {
			return err
		}

		bodyEnd := attrs.Offset + headerSize + int64(attrs.Size)
		if limit >= 0 && bodyEnd > start+limit {
			return fmt.Errorf("%s: %w", attrs, ErrChunkOverrun)
		}

		if attrs.IsForm() {
			err = walk(r, int64(attrs.PayloadSize), fn)
		} else {
			body := newReaderAt(io.LimitReader(r, int64(attrs.PayloadSize)), r.Pos())
			err = fn(attrs, body)
		}
		if err != nil {
			return err
		}

		if rest := bodyEnd - r.Pos(); rest > 0 {
			if err := r.Skip(rest); err != nil {
				return fmt.Errorf("skipping rest of %s: %w", attrs, err)
			}
		}

		if attrs.Size%2 == 1 {
			if limit >= 0 && bodyEnd+1 > start+limit {
				continue
			}
			if err := r.Skip(1); err != nil {
				// A missing pad byte at the very end of the stream is harmless.
				if limit < 0 && errors.Is(err, io.ErrUnexpectedEOF) {
					return nil
				}
				return err
			}
		}
	}
}

package upload

import (
	"errors"
	"io"
	"iter"
)

// DefaultChunkSize is the read size used when draining a part.
const DefaultChunkSize = 32 * 1024

// ReadChunks yields the bytes of r in arrival order. A yielded slice is only
// valid until the next iteration. Reading stops at EOF or at the first error,
// which is yielded once.
func ReadChunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// Drain concatenates every chunk into one owned buffer. Nothing is returned
// on error so callers never act on a partial payload.
func Drain(chunks iter.Seq2[[]byte, error]) ([]byte, error) {
	var out []byte
	for chunk, err := range chunks {
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

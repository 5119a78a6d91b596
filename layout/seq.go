package layout

import (
	"fmt"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/raydium-go/shared"
)

// ReadBlob reads exactly n bytes.
func ReadBlob(decoder *binary.Decoder, n int) ([]byte, error) {
	r := NewReader(decoder)
	out := r.Blob(n)
	return out, r.Err()
}

// WriteBlob writes b zero padded to n bytes.
func WriteBlob(encoder *binary.Encoder, b []byte, n int) error {
	w := NewWriter(encoder)
	w.Blob(b, n)
	return w.Err()
}

// ReadSeq reads a fixed-length sequence of n elements.
func ReadSeq[T any](decoder *binary.Decoder, n int, read func(*Reader) T) ([]T, error) {
	r := NewReader(decoder)
	out := make([]T, n)
	for i := range out {
		out[i] = read(r)
		if r.Err() != nil {
			return nil, fmt.Errorf("element %d: %w", i, r.Err())
		}
	}
	return out, nil
}

// WriteSeq writes items as a fixed-length sequence of n elements. Missing
// trailing elements are written as zero values.
func WriteSeq[T any](encoder *binary.Encoder, items []T, n int, write func(*Writer, T)) error {
	if len(items) > n {
		return fmt.Errorf("%w: %d elements exceed fixed length %d", shared.ErrInvalidLayout, len(items), n)
	}
	w := NewWriter(encoder)
	var zero T
	for i := 0; i < n; i++ {
		if i < len(items) {
			write(w, items[i])
		} else {
			write(w, zero)
		}
		if w.Err() != nil {
			return w.Err()
		}
	}
	return nil
}

// ReadCountedSeq reads count elements where count was decoded from a
// sibling field. A count above max, or one the remaining input cannot hold
// at elemSize bytes per element, is rejected before allocation.
func ReadCountedSeq[T any](decoder *binary.Decoder, count uint64, max int, elemSize int, read func(*Reader) T) ([]T, error) {
	if count > uint64(max) {
		return nil, fmt.Errorf("%w: count %d exceeds cap %d", shared.ErrInvalidLayout, count, max)
	}
	if elemSize > 0 && uint64(decoder.Remaining()) < count*uint64(elemSize) {
		return nil, fmt.Errorf("%w: %d elements need %d bytes, %d remain",
			shared.ErrInvalidLayout, count, count*uint64(elemSize), decoder.Remaining())
	}
	return ReadSeq(decoder, int(count), read)
}

// Package layout maps fixed-offset little-endian account and instruction
// records to Go values. It has no knowledge of pools or tokens.
package layout

import (
	"bytes"
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/raydium-go/shared"
)

// Schema is a binary record with a known span.
//
// Span reports the encoded size of the value as currently populated. For
// fixed records it is a constant; for records holding counted sequences it is
// the static header size until the sequence is filled.
type Schema interface {
	Span() int
	UnmarshalWithDecoder(decoder *binary.Decoder) error
	MarshalWithEncoder(encoder *binary.Encoder) error
}

// Decode fills s from data. A buffer shorter than the static span of s is
// rejected with shared.ErrInvalidLayout before any field is read.
func Decode(data []byte, s Schema) error {
	if len(data) < s.Span() {
		return fmt.Errorf("%w: need %d bytes, got %d", shared.ErrInvalidLayout, s.Span(), len(data))
	}
	if err := s.UnmarshalWithDecoder(binary.NewBinDecoder(data)); err != nil {
		if errors.Is(err, shared.ErrUnknownTag) || errors.Is(err, shared.ErrInvalidLayout) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrInvalidLayout, err)
	}
	return nil
}

// Encode serializes s. The output length always equals s.Span().
func Encode(s Schema) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(s.Span())
	if err := s.MarshalWithEncoder(binary.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	if buf.Len() != s.Span() {
		return nil, fmt.Errorf("%w: encoded %d bytes, span is %d", shared.ErrInvalidLayout, buf.Len(), s.Span())
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode for values built in code, such as test fixtures.
func MustEncode(s Schema) []byte {
	out, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return out
}

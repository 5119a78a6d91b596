package layout

import (
	"bytes"
	"encoding/hex"
	"fmt"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/raydium-go/shared"
)

// Variant is one arm of a tagged union. The discriminator is not part of
// the variant's own span.
type Variant interface {
	Schema
	Discriminator() []byte
}

type variantEntry struct {
	name string
	new  func() Variant
}

// Registry selects a Variant by a leading discriminator of fixed size.
type Registry struct {
	tagSize  int
	variants map[string]variantEntry
}

func NewRegistry(tagSize int) *Registry {
	return &Registry{tagSize: tagSize, variants: make(map[string]variantEntry)}
}

// Register adds a variant constructor. It panics on a malformed or
// duplicate discriminator, which can only happen at package init.
func (r *Registry) Register(name string, newFn func() Variant) {
	tag := newFn().Discriminator()
	if len(tag) != r.tagSize {
		panic(fmt.Sprintf("layout: %s discriminator has %d bytes, registry expects %d", name, len(tag), r.tagSize))
	}
	if prev, ok := r.variants[string(tag)]; ok {
		panic(fmt.Sprintf("layout: %s reuses discriminator of %s", name, prev.name))
	}
	r.variants[string(tag)] = variantEntry{name: name, new: newFn}
}

// Name returns the registered name for tag.
func (r *Registry) Name(tag []byte) (string, bool) {
	e, ok := r.variants[string(tag)]
	return e.name, ok
}

// Decode reads the discriminator and decodes the rest of data as the
// registered variant.
func (r *Registry) Decode(data []byte) (Variant, error) {
	if len(data) < r.tagSize {
		return nil, fmt.Errorf("%w: need %d tag bytes, got %d", shared.ErrInvalidLayout, r.tagSize, len(data))
	}
	tag := data[:r.tagSize]
	e, ok := r.variants[string(tag)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTag, hex.EncodeToString(tag))
	}
	v := e.new()
	if err := Decode(data[r.tagSize:], v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.name, err)
	}
	return v, nil
}

// Encode writes the discriminator of v followed by its payload.
func (r *Registry) Encode(v Variant) ([]byte, error) {
	tag := v.Discriminator()
	if _, ok := r.variants[string(tag)]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTag, hex.EncodeToString(tag))
	}
	payload, err := Encode(v)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(make([]byte, 0, len(tag)+len(payload)))
	buf.Write(tag)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Len is the number of registered variants.
func (r *Registry) Len() int { return len(r.variants) }

// DecodeVariant decodes a variant embedded in a larger record.
func DecodeVariant(decoder *binary.Decoder, r *Registry) (Variant, error) {
	tag, err := ReadBlob(decoder, r.tagSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidLayout, err)
	}
	e, ok := r.variants[string(tag)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTag, hex.EncodeToString(tag))
	}
	v := e.new()
	if err := v.UnmarshalWithDecoder(decoder); err != nil {
		return nil, err
	}
	return v, nil
}

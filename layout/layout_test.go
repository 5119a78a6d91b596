package layout

import (
	"errors"
	"testing"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/shared"
)

type inner struct {
	A uint16
	B int32
}

func (s *inner) Span() int { return 6 }

func (s *inner) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := NewReader(decoder)
	s.A = r.U16()
	s.B = r.I32()
	return r.Err()
}

func (s *inner) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := NewWriter(encoder)
	w.U16(s.A)
	w.I32(s.B)
	return w.Err()
}

type record struct {
	Flag   bool
	Small  int8
	Big    binary.Uint128
	Signed binary.Int128
	Key    solana.PublicKey
	Nested inner
	Words  []uint64
	Tail   []byte
}

func (s *record) Span() int { return 1 + 1 + 16 + 16 + 32 + 6 + 4*8 + 5 }

func (s *record) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := NewReader(decoder)
	s.Flag = r.Bool()
	s.Small = r.I8()
	s.Big = r.U128()
	s.Signed = r.I128()
	s.Key = r.PublicKey()
	r.Schema(&s.Nested)
	if r.Err() != nil {
		return r.Err()
	}
	words, err := ReadSeq(decoder, 4, func(r *Reader) uint64 { return r.U64() })
	if err != nil {
		return err
	}
	s.Words = words
	s.Tail, err = ReadBlob(decoder, 5)
	return err
}

func (s *record) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := NewWriter(encoder)
	w.Bool(s.Flag)
	w.I8(s.Small)
	w.U128(s.Big)
	w.I128(s.Signed)
	w.PublicKey(s.Key)
	w.Schema(&s.Nested)
	if w.Err() != nil {
		return w.Err()
	}
	if err := WriteSeq(encoder, s.Words, 4, func(w *Writer, v uint64) { w.U64(v) }); err != nil {
		return err
	}
	return WriteBlob(encoder, s.Tail, 5)
}

func TestRoundTrip(t *testing.T) {
	in := &record{
		Flag:   true,
		Small:  -7,
		Big:    binary.Uint128{Lo: 1, Hi: 1 << 63},
		Signed: binary.Int128{Lo: ^uint64(0), Hi: ^uint64(0)},
		Key:    solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"),
		Nested: inner{A: 65535, B: -443636},
		Words:  []uint64{1, 2, 3, 4},
		Tail:   []byte{9, 8, 7, 6, 5},
	}
	data, err := Encode(in)
	require.NoError(t, err)
	require.Len(t, data, in.Span())

	out := &record{}
	require.NoError(t, Decode(data, out))
	require.Equal(t, in, out)
}

func TestDecodeShortInput(t *testing.T) {
	data := MustEncode(&record{Words: []uint64{1}, Tail: []byte{1}})
	err := Decode(data[:len(data)-1], &record{})
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

func TestWriteSeqTooLong(t *testing.T) {
	_, err := Encode(&record{Words: []uint64{1, 2, 3, 4, 5}})
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

func TestWriteBlobTooLong(t *testing.T) {
	_, err := Encode(&record{Tail: make([]byte, 6)})
	require.Error(t, err)
}

func TestReadCountedSeq(t *testing.T) {
	data := MustEncode(&record{Words: []uint64{10, 20, 30, 40}})
	decoder := binary.NewBinDecoder(data[1+1+16+16+32+6:])

	got, err := ReadCountedSeq(decoder, 3, 8, 8, func(r *Reader) uint64 { return r.U64() })
	require.NoError(t, err)
	require.Equal(t, []uint64{10, 20, 30}, got)

	_, err = ReadCountedSeq(binary.NewBinDecoder(data), 9, 8, 8, func(r *Reader) uint64 { return r.U64() })
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = ReadCountedSeq(binary.NewBinDecoder(data[:16]), 3, 8, 8, func(r *Reader) uint64 { return r.U64() })
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

type ping struct{ N uint64 }

func (*ping) Discriminator() []byte { return []byte{1} }
func (*ping) Span() int             { return 8 }
func (s *ping) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := NewReader(decoder)
	s.N = r.U64()
	return r.Err()
}
func (s *ping) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := NewWriter(encoder)
	w.U64(s.N)
	return w.Err()
}

type pong struct{ K solana.PublicKey }

func (*pong) Discriminator() []byte { return []byte{2} }
func (*pong) Span() int             { return 32 }
func (s *pong) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := NewReader(decoder)
	s.K = r.PublicKey()
	return r.Err()
}
func (s *pong) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := NewWriter(encoder)
	w.PublicKey(s.K)
	return w.Err()
}

func newTestRegistry() *Registry {
	r := NewRegistry(1)
	r.Register("ping", func() Variant { return &ping{} })
	r.Register("pong", func() Variant { return &pong{} })
	return r
}

func TestRegistry(t *testing.T) {
	r := newTestRegistry()
	require.Equal(t, 2, r.Len())

	data, err := r.Encode(&ping{N: 42})
	require.NoError(t, err)
	require.Equal(t, byte(1), data[0])
	require.Len(t, data, 9)

	v, err := r.Decode(data)
	require.NoError(t, err)
	require.Equal(t, &ping{N: 42}, v)

	name, ok := r.Name([]byte{2})
	require.True(t, ok)
	require.Equal(t, "pong", name)
}

func TestRegistryUnknownTag(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Decode([]byte{3, 0, 0})
	require.True(t, errors.Is(err, shared.ErrUnknownTag))

	_, err = r.Decode(nil)
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = r.Decode([]byte{1, 0})
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := newTestRegistry()
	require.Panics(t, func() {
		r.Register("ping2", func() Variant { return &ping{} })
	})
}

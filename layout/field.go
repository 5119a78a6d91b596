package layout

import (
	bin "encoding/binary"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// LE is the byte order of every on-chain record handled here.
var LE = bin.LittleEndian

// Reader wraps a decoder with a sticky error so a record can be read field
// by field and checked once.
type Reader struct {
	d   *binary.Decoder
	err error
}

func NewReader(decoder *binary.Decoder) *Reader {
	return &Reader{d: decoder}
}

// Err returns the first error met by the reader.
func (r *Reader) Err() error { return r.err }

// Fail records err unless an earlier error is pending.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Decoder exposes the wrapped decoder for nested schemas.
func (r *Reader) Decoder() *binary.Decoder { return r.d }

func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.d.ReadUint8()
	r.err = err
	return v
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

func (r *Reader) U16() uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.d.ReadUint16(LE)
	r.err = err
	return v
}

func (r *Reader) U32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.d.ReadUint32(LE)
	r.err = err
	return v
}

func (r *Reader) U64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.d.ReadUint64(LE)
	r.err = err
	return v
}

func (r *Reader) I8() int8   { return int8(r.U8()) }
func (r *Reader) I16() int16 { return int16(r.U16()) }
func (r *Reader) I32() int32 { return int32(r.U32()) }
func (r *Reader) I64() int64 { return int64(r.U64()) }

// U128 reads a little-endian unsigned 128-bit integer as two words.
func (r *Reader) U128() binary.Uint128 {
	lo := r.U64()
	hi := r.U64()
	return binary.Uint128{Lo: lo, Hi: hi}
}

// I128 reads a little-endian two's complement 128-bit integer.
func (r *Reader) I128() binary.Int128 {
	lo := r.U64()
	hi := r.U64()
	return binary.Int128{Lo: lo, Hi: hi}
}

// Blob reads n raw bytes into a fresh slice.
func (r *Reader) Blob(n int) []byte {
	if r.err != nil {
		return nil
	}
	v, err := r.d.ReadNBytes(n)
	if err != nil {
		r.err = err
		return nil
	}
	out := make([]byte, n)
	copy(out, v)
	return out
}

func (r *Reader) PublicKey() solana.PublicKey {
	return solana.PublicKeyFromBytes(r.pad(r.Blob(solana.PublicKeyLength), solana.PublicKeyLength))
}

// Skip discards n padding bytes.
func (r *Reader) Skip(n int) {
	r.Blob(n)
}

// Schema decodes a nested record in place.
func (r *Reader) Schema(s Schema) {
	if r.err != nil {
		return
	}
	r.err = s.UnmarshalWithDecoder(r.d)
}

func (r *Reader) pad(b []byte, n int) []byte {
	if len(b) == n {
		return b
	}
	return make([]byte, n)
}

// Writer mirrors Reader for encoding.
type Writer struct {
	e   *binary.Encoder
	err error
}

func NewWriter(encoder *binary.Encoder) *Writer {
	return &Writer{e: encoder}
}

func (w *Writer) Err() error { return w.err }

func (w *Writer) Encoder() *binary.Encoder { return w.e }

func (w *Writer) U8(v uint8) {
	if w.err != nil {
		return
	}
	w.err = w.e.WriteUint8(v)
}

func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
		return
	}
	w.U8(0)
}

func (w *Writer) U16(v uint16) {
	if w.err != nil {
		return
	}
	w.err = w.e.WriteUint16(v, LE)
}

func (w *Writer) U32(v uint32) {
	if w.err != nil {
		return
	}
	w.err = w.e.WriteUint32(v, LE)
}

func (w *Writer) U64(v uint64) {
	if w.err != nil {
		return
	}
	w.err = w.e.WriteUint64(v, LE)
}

func (w *Writer) I8(v int8)   { w.U8(uint8(v)) }
func (w *Writer) I16(v int16) { w.U16(uint16(v)) }
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }
func (w *Writer) I64(v int64) { w.U64(uint64(v)) }

func (w *Writer) U128(v binary.Uint128) {
	w.U64(v.Lo)
	w.U64(v.Hi)
}

func (w *Writer) I128(v binary.Int128) {
	w.U64(v.Lo)
	w.U64(v.Hi)
}

// Blob writes b as exactly n bytes. A longer b is an error; a shorter one is zero padded.
func (w *Writer) Blob(b []byte, n int) {
	if w.err != nil {
		return
	}
	if len(b) > n {
		w.err = fmt.Errorf("blob of %d bytes exceeds field width %d", len(b), n)
		return
	}
	out := make([]byte, n)
	copy(out, b)
	w.err = w.e.WriteBytes(out, false)
}

func (w *Writer) PublicKey(v solana.PublicKey) {
	w.Blob(v[:], solana.PublicKeyLength)
}

// Zero writes n padding bytes.
func (w *Writer) Zero(n int) {
	w.Blob(nil, n)
}

func (w *Writer) Schema(s Schema) {
	if w.err != nil {
		return
	}
	w.err = s.MarshalWithEncoder(w.e)
}

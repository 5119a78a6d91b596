package stable

import (
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
)

// DataElementCount is the fixed number of samples in the model account.
const DataElementCount = 50_000

const dataElementSpan = 24

// ModelDataPubkey is the account holding the curve shared by every stable pool.
var ModelDataPubkey = solana.MustPublicKeyFromBase58("CDSr3ssLcRB6XYPJwAfFt18MZvEZp4LjHcvzBVZ45duo")

// DataElement is one (x, y, price) sample of the curve in table units.
type DataElement struct {
	X     uint64
	Y     uint64
	Price uint64
}

// ModelDataLayout is the model data account. Elements always holds
// DataElementCount samples; only the first ValidDataCount are meaningful.
type ModelDataLayout struct {
	AccountType    uint64
	Status         uint64
	Multiplier     uint64
	ValidDataCount uint64
	Elements       []DataElement
}

func (*ModelDataLayout) Span() int { return 32 + DataElementCount*dataElementSpan }

func readElement(r *layout.Reader) DataElement {
	return DataElement{X: r.U64(), Y: r.U64(), Price: r.U64()}
}

func writeElement(w *layout.Writer, e DataElement) {
	w.U64(e.X)
	w.U64(e.Y)
	w.U64(e.Price)
}

func (obj *ModelDataLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.AccountType = r.U64()
	obj.Status = r.U64()
	obj.Multiplier = r.U64()
	obj.ValidDataCount = r.U64()
	if err := r.Err(); err != nil {
		return err
	}
	elements, err := layout.ReadSeq(decoder, DataElementCount, readElement)
	if err != nil {
		return err
	}
	obj.Elements = elements
	return nil
}

func (obj *ModelDataLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.AccountType)
	w.U64(obj.Status)
	w.U64(obj.Multiplier)
	w.U64(obj.ValidDataCount)
	if err := w.Err(); err != nil {
		return err
	}
	return layout.WriteSeq(encoder, obj.Elements, DataElementCount, writeElement)
}

// DecodeModel decodes the model data account and builds a Model from its
// valid samples.
func DecodeModel(data []byte) (*Model, error) {
	raw := &ModelDataLayout{}
	if err := layout.Decode(data, raw); err != nil {
		return nil, err
	}
	return NewModel(raw)
}

// EncodeModel writes a model back in account form.
func EncodeModel(m *Model) ([]byte, error) {
	raw := &ModelDataLayout{
		Multiplier:     uint64(m.Multiplier),
		ValidDataCount: uint64(len(m.points)),
		Elements:       make([]DataElement, len(m.points)),
	}
	for i, p := range m.points {
		raw.Elements[i] = DataElement{X: uint64(p.X), Y: uint64(p.Y), Price: uint64(p.Price)}
	}
	return layout.Encode(raw)
}

// NewModel keeps the first ValidDataCount samples of raw.
func NewModel(raw *ModelDataLayout) (*Model, error) {
	count := raw.ValidDataCount
	if count < 3 || count > uint64(len(raw.Elements)) {
		return nil, fmt.Errorf("%w: model has %d valid samples of %d", shared.ErrInvalidLayout, count, len(raw.Elements))
	}
	if raw.Multiplier == 0 {
		return nil, fmt.Errorf("%w: model multiplier is zero", shared.ErrInvalidLayout)
	}
	m := &Model{
		Multiplier: float64(raw.Multiplier),
		points:     make([]point, count),
	}
	for i, e := range raw.Elements[:count] {
		m.points[i] = point{X: float64(e.X), Y: float64(e.Y), Price: float64(e.Price)}
	}
	return m, nil
}

// EncodeLayout writes raw as stored on chain.
func EncodeLayout(raw *ModelDataLayout) ([]byte, error) {
	return layout.Encode(raw)
}

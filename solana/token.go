package solana

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
)

const MintSize = 82

// Token represents a Solana token with mint information and owner
type Token struct {
	Address         solana.PublicKey
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
	// Owner is the token program that owns the mint.
	Owner solana.PublicKey
}

// MintLayout is the SPL mint account.
type MintLayout struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

func (*MintLayout) Span() int { return MintSize }

func (obj *MintLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.MintAuthorityOption = r.U32()
	obj.MintAuthority = r.PublicKey()
	obj.Supply = r.U64()
	obj.Decimals = r.U8()
	obj.IsInitialized = r.Bool()
	obj.FreezeAuthorityOption = r.U32()
	obj.FreezeAuthority = r.PublicKey()
	return r.Err()
}

func (obj *MintLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U32(obj.MintAuthorityOption)
	w.PublicKey(obj.MintAuthority)
	w.U64(obj.Supply)
	w.U8(obj.Decimals)
	w.Bool(obj.IsInitialized)
	w.U32(obj.FreezeAuthorityOption)
	w.PublicKey(obj.FreezeAuthority)
	return w.Err()
}

// DecodeMint decodes a mint owned by programID.
func DecodeMint(address, programID solana.PublicKey, data []byte) (*Token, error) {
	raw := &MintLayout{}
	if err := layout.Decode(data, raw); err != nil {
		return nil, err
	}
	t := &Token{
		Address:       address,
		Supply:        raw.Supply,
		Decimals:      raw.Decimals,
		IsInitialized: raw.IsInitialized,
		Owner:         programID,
	}
	if raw.MintAuthorityOption > 0 {
		authority := raw.MintAuthority
		t.MintAuthority = &authority
	}
	if raw.FreezeAuthorityOption > 0 {
		authority := raw.FreezeAuthority
		t.FreezeAuthority = &authority
	}
	return t, nil
}

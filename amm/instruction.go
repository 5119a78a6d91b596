package amm

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/amm/stable"
	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
)

const (
	swapBaseInTag  = 9
	swapBaseOutTag = 11
)

// instructions selects a legacy AMM instruction by its 1-byte tag.
var instructions = layout.NewRegistry(1)

func init() {
	instructions.Register("swapBaseIn", func() layout.Variant { return &SwapBaseInArgs{} })
	instructions.Register("swapBaseOut", func() layout.Variant { return &SwapBaseOutArgs{} })
}

// SwapBaseInArgs is the fixed-input swap payload.
type SwapBaseInArgs struct {
	AmountIn     uint64
	MinAmountOut uint64
}

func (*SwapBaseInArgs) Discriminator() []byte { return []byte{swapBaseInTag} }

func (*SwapBaseInArgs) Span() int { return 16 }

func (obj *SwapBaseInArgs) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.AmountIn = r.U64()
	obj.MinAmountOut = r.U64()
	return r.Err()
}

func (obj *SwapBaseInArgs) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.AmountIn)
	w.U64(obj.MinAmountOut)
	return w.Err()
}

// SwapBaseOutArgs is the fixed-output swap payload.
type SwapBaseOutArgs struct {
	MaxAmountIn uint64
	AmountOut   uint64
}

func (*SwapBaseOutArgs) Discriminator() []byte { return []byte{swapBaseOutTag} }

func (*SwapBaseOutArgs) Span() int { return 16 }

func (obj *SwapBaseOutArgs) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.MaxAmountIn = r.U64()
	obj.AmountOut = r.U64()
	return r.Err()
}

func (obj *SwapBaseOutArgs) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.MaxAmountIn)
	w.U64(obj.AmountOut)
	return w.Err()
}

// DecodeInstruction decodes a legacy AMM instruction payload.
func DecodeInstruction(data []byte) (layout.Variant, error) {
	return instructions.Decode(data)
}

// SwapParams holds the accounts and amounts of one legacy swap.
type SwapParams struct {
	Pool     *Pool
	Market   *MarketStateV3
	Owner    solana.PublicKey
	TokenIn  solana.PublicKey
	TokenOut solana.PublicKey

	// For fixed-input swaps AmountIn is exact and OtherAmount is the
	// minimum output; for fixed-output swaps AmountOut is exact and
	// OtherAmount is the maximum input.
	FixedIn     bool
	Amount      *big.Int
	OtherAmount *big.Int
}

// BuildSwapInstruction builds swapBaseIn or swapBaseOut for the pool's version.
func BuildSwapInstruction(p *SwapParams) (*solana.GenericInstruction, error) {
	if p.Pool == nil || p.Market == nil {
		return nil, fmt.Errorf("%w: swap needs pool and market state", shared.ErrPoolNotFound)
	}
	if p.Amount == nil || !p.Amount.IsUint64() || p.OtherAmount == nil || !p.OtherAmount.IsUint64() {
		return nil, fmt.Errorf("%w: swap amounts must fit in u64", shared.ErrRange)
	}

	var args layout.Variant
	if p.FixedIn {
		args = &SwapBaseInArgs{AmountIn: p.Amount.Uint64(), MinAmountOut: p.OtherAmount.Uint64()}
	} else {
		args = &SwapBaseOutArgs{MaxAmountIn: p.OtherAmount.Uint64(), AmountOut: p.Amount.Uint64()}
	}
	data, err := instructions.Encode(args)
	if err != nil {
		return nil, err
	}

	authority, _, err := AuthorityPDA(p.Pool.ProgramID)
	if err != nil {
		return nil, err
	}
	info := p.Pool.Info
	vaultSigner, err := p.Market.VaultSigner(info.MarketID, info.MarketProgramID)
	if err != nil {
		return nil, fmt.Errorf("market %s vault signer: %w", info.MarketID, err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.Pool.ID, true, false),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(info.OpenOrders, true, false),
	}
	if p.Pool.Version == shared.PoolVersionV4 {
		accounts = append(accounts, solana.NewAccountMeta(info.TargetOrders, true, false))
	}
	accounts = append(accounts,
		solana.NewAccountMeta(info.BaseVault, true, false),
		solana.NewAccountMeta(info.QuoteVault, true, false),
	)
	if p.Pool.Version == shared.PoolVersionV5 {
		accounts = append(accounts, solana.NewAccountMeta(stable.ModelDataPubkey, false, false))
	}
	accounts = append(accounts,
		solana.NewAccountMeta(info.MarketProgramID, false, false),
		solana.NewAccountMeta(info.MarketID, true, false),
		solana.NewAccountMeta(p.Market.Bids, true, false),
		solana.NewAccountMeta(p.Market.Asks, true, false),
		solana.NewAccountMeta(p.Market.EventQueue, true, false),
		solana.NewAccountMeta(p.Market.BaseVault, true, false),
		solana.NewAccountMeta(p.Market.QuoteVault, true, false),
		solana.NewAccountMeta(vaultSigner, false, false),
		solana.NewAccountMeta(p.TokenIn, true, false),
		solana.NewAccountMeta(p.TokenOut, true, false),
		solana.NewAccountMeta(p.Owner, false, true),
	)
	return solana.NewInstruction(p.Pool.ProgramID, accounts, data), nil
}

package clmm

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/u128"
)

var (
	swapDiscriminator   = []byte{248, 198, 158, 145, 225, 117, 135, 200}
	swapV2Discriminator = []byte{43, 4, 237, 11, 26, 201, 30, 98}
)

// instructions selects a CLMM instruction payload by its 8-byte sighash.
var instructions = layout.NewRegistry(8)

func init() {
	instructions.Register("swap", func() layout.Variant { return &SwapArgs{} })
	instructions.Register("swap_v2", func() layout.Variant { return &SwapV2Args{} })
}

// SwapArgs is the payload of the swap instruction.
type SwapArgs struct {
	Amount               uint64
	OtherAmountThreshold uint64
	SqrtPriceLimitX64    binary.Uint128
	IsBaseInput          bool
}

func (*SwapArgs) Discriminator() []byte { return swapDiscriminator }

func (*SwapArgs) Span() int { return 8 + 8 + 16 + 1 }

func (obj *SwapArgs) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.Amount = r.U64()
	obj.OtherAmountThreshold = r.U64()
	obj.SqrtPriceLimitX64 = r.U128()
	obj.IsBaseInput = r.Bool()
	return r.Err()
}

func (obj *SwapArgs) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.Amount)
	w.U64(obj.OtherAmountThreshold)
	w.U128(obj.SqrtPriceLimitX64)
	w.Bool(obj.IsBaseInput)
	return w.Err()
}

// SwapV2Args is the payload of swap_v2, which also supports Token-2022 mints.
type SwapV2Args struct {
	SwapArgs
}

func (*SwapV2Args) Discriminator() []byte { return swapV2Discriminator }

// DecodeInstruction decodes a CLMM instruction payload.
func DecodeInstruction(data []byte) (layout.Variant, error) {
	return instructions.Decode(data)
}

// SwapParams holds the accounts and amounts of one CLMM swap.
type SwapParams struct {
	Pool               *Pool
	Payer              solana.PublicKey
	InputTokenAccount  solana.PublicKey
	OutputTokenAccount solana.PublicKey
	InputMint          solana.PublicKey

	// Amount is the input for exact-in swaps and the output for exact-out swaps.
	Amount *big.Int
	// OtherAmountThreshold is the minimum output or maximum input.
	OtherAmountThreshold *big.Int
	SqrtPriceLimitX64    *big.Int
	IsBaseInput          bool

	// TickArrays are the tick-array PDAs the swap crosses, in order.
	TickArrays []solana.PublicKey
}

func (p *SwapParams) args() (SwapArgs, error) {
	if p.Amount == nil || !p.Amount.IsUint64() {
		return SwapArgs{}, fmt.Errorf("%w: amount must fit in u64", shared.ErrRange)
	}
	threshold := uint64(0)
	if p.OtherAmountThreshold != nil {
		if !p.OtherAmountThreshold.IsUint64() {
			return SwapArgs{}, fmt.Errorf("%w: threshold must fit in u64", shared.ErrRange)
		}
		threshold = p.OtherAmountThreshold.Uint64()
	}
	limit := p.SqrtPriceLimitX64
	if limit == nil {
		limit = big.NewInt(0)
	}
	sqrtPriceLimit, err := u128.FromBig(limit)
	if err != nil {
		return SwapArgs{}, fmt.Errorf("%w: %v", shared.ErrRange, err)
	}
	return SwapArgs{
		Amount:               p.Amount.Uint64(),
		OtherAmountThreshold: threshold,
		SqrtPriceLimitX64:    sqrtPriceLimit,
		IsBaseInput:          p.IsBaseInput,
	}, nil
}

// vaults returns the pool vaults and mints ordered input first.
func (p *SwapParams) vaults() (inVault, outVault solana.PublicKey, inMint, outMint MintInfo, err error) {
	zeroForOne, err := p.Pool.ZeroForOne(p.InputMint)
	if err != nil {
		return
	}
	if zeroForOne {
		return p.Pool.VaultA, p.Pool.VaultB, p.Pool.MintA, p.Pool.MintB, nil
	}
	return p.Pool.VaultB, p.Pool.VaultA, p.Pool.MintB, p.Pool.MintA, nil
}

// BuildSwapInstruction builds the swap instruction. The first tick array is
// a named account; the bitmap extension and the remaining tick arrays follow.
func BuildSwapInstruction(p *SwapParams) (*solana.GenericInstruction, error) {
	if len(p.TickArrays) == 0 {
		return nil, fmt.Errorf("%w: swap needs at least one tick array", shared.ErrInsufficientLiquidity)
	}
	args, err := p.args()
	if err != nil {
		return nil, err
	}
	inVault, outVault, _, _, err := p.vaults()
	if err != nil {
		return nil, err
	}
	ext, err := DeriveBitmapExtensionAddress(p.Pool.ProgramID, p.Pool.ID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Payer, false, true),
		solana.NewAccountMeta(p.Pool.AmmConfig, false, false),
		solana.NewAccountMeta(p.Pool.ID, true, false),
		solana.NewAccountMeta(p.InputTokenAccount, true, false),
		solana.NewAccountMeta(p.OutputTokenAccount, true, false),
		solana.NewAccountMeta(inVault, true, false),
		solana.NewAccountMeta(outVault, true, false),
		solana.NewAccountMeta(p.Pool.ObservationKey, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(p.TickArrays[0], true, false),
		solana.NewAccountMeta(ext, true, false),
	}
	for _, key := range p.TickArrays[1:] {
		accounts = append(accounts, solana.NewAccountMeta(key, true, false))
	}

	data, err := instructions.Encode(&args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.Pool.ProgramID, accounts, data), nil
}

// BuildSwapV2Instruction builds swap_v2. Remaining accounts are the bitmap
// extension followed by every tick array.
func BuildSwapV2Instruction(p *SwapParams) (*solana.GenericInstruction, error) {
	if len(p.TickArrays) == 0 {
		return nil, fmt.Errorf("%w: swap needs at least one tick array", shared.ErrInsufficientLiquidity)
	}
	args, err := p.args()
	if err != nil {
		return nil, err
	}
	inVault, outVault, inMint, outMint, err := p.vaults()
	if err != nil {
		return nil, err
	}
	ext, err := DeriveBitmapExtensionAddress(p.Pool.ProgramID, p.Pool.ID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Payer, false, true),
		solana.NewAccountMeta(p.Pool.AmmConfig, false, false),
		solana.NewAccountMeta(p.Pool.ID, true, false),
		solana.NewAccountMeta(p.InputTokenAccount, true, false),
		solana.NewAccountMeta(p.OutputTokenAccount, true, false),
		solana.NewAccountMeta(inVault, true, false),
		solana.NewAccountMeta(outVault, true, false),
		solana.NewAccountMeta(p.Pool.ObservationKey, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.Token2022ProgramID, false, false),
		solana.NewAccountMeta(MemoProgramID, false, false),
		solana.NewAccountMeta(inMint.Address, false, false),
		solana.NewAccountMeta(outMint.Address, false, false),
		solana.NewAccountMeta(ext, true, false),
	}
	for _, key := range p.TickArrays {
		accounts = append(accounts, solana.NewAccountMeta(key, true, false))
	}

	data, err := instructions.Encode(&SwapV2Args{SwapArgs: args})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(p.Pool.ProgramID, accounts, data), nil
}

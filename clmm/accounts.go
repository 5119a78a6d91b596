package clmm

import (
	"fmt"

	solanago "github.com/krazyTry/raydium-go/solana"

	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/u128"
)

var (
	poolStateDiscriminator       = solanago.AccountDiscriminator("PoolState")
	tickArrayDiscriminator       = solanago.AccountDiscriminator("TickArrayState")
	bitmapExtensionDiscriminator = solanago.AccountDiscriminator("TickArrayBitmapExtension")
	ammConfigDiscriminator       = solanago.AccountDiscriminator("AmmConfig")
)

// accounts selects a CLMM account layout by its Anchor discriminator.
var accounts = layout.NewRegistry(8)

func init() {
	accounts.Register("PoolState", func() layout.Variant { return &PoolStateLayout{} })
	accounts.Register("TickArrayState", func() layout.Variant { return &TickArrayLayout{} })
	accounts.Register("TickArrayBitmapExtension", func() layout.Variant { return &TickArrayBitmapExtensionLayout{} })
	accounts.Register("AmmConfig", func() layout.Variant { return &AmmConfigLayout{} })
}

// DecodeAccount decodes any CLMM account the engine reads.
func DecodeAccount(data []byte) (layout.Variant, error) {
	return accounts.Decode(data)
}

// EncodeAccount writes v with its discriminator, as stored on chain.
func EncodeAccount(v layout.Variant) ([]byte, error) {
	return accounts.Encode(v)
}

func decodeAs[T layout.Variant](data []byte) (T, error) {
	var zero T
	v, err := accounts.Decode(data)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: account is %T, want %T", shared.ErrUnknownTag, v, zero)
	}
	return out, nil
}

func DecodePoolState(data []byte) (*PoolStateLayout, error) {
	return decodeAs[*PoolStateLayout](data)
}

func DecodeTickArray(data []byte) (*TickArrayLayout, error) {
	return decodeAs[*TickArrayLayout](data)
}

func DecodeBitmapExtension(data []byte) (*TickArrayBitmapExtensionLayout, error) {
	return decodeAs[*TickArrayBitmapExtensionLayout](data)
}

func DecodeAmmConfig(data []byte) (*AmmConfigLayout, error) {
	return decodeAs[*AmmConfigLayout](data)
}

// Page converts the decoded account into a tick.Page.
func (obj *TickArrayLayout) Page() *tick.Page {
	p := &tick.Page{
		PoolID:               obj.PoolID,
		StartTickIndex:       obj.StartTickIndex,
		InitializedTickCount: obj.InitializedTickCount,
	}
	for i := range obj.Ticks {
		src := &obj.Ticks[i]
		dst := &p.Ticks[i]
		dst.Tick = src.Tick
		dst.LiquidityNet = u128.Int128ToBig(src.LiquidityNet)
		dst.LiquidityGross = u128.ToBig(src.LiquidityGross)
		dst.FeeGrowthOutsideX64A = u128.ToBig(src.FeeGrowthOutside0X64)
		dst.FeeGrowthOutsideX64B = u128.ToBig(src.FeeGrowthOutside1X64)
		for j := range src.RewardGrowthsOutsideX64 {
			dst.RewardGrowthsOutsideX64[j] = u128.ToBig(src.RewardGrowthsOutsideX64[j])
		}
	}
	return p
}

// Bitmap converts the decoded extension account into a tick.ExtensionBitmap.
func (obj *TickArrayBitmapExtensionLayout) Bitmap() *tick.ExtensionBitmap {
	return &tick.ExtensionBitmap{
		Positive: obj.PositiveTickArrayBitmap,
		Negative: obj.NegativeTickArrayBitmap,
	}
}

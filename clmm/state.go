package clmm

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/layout"
)

// Spans exclude the 8-byte account discriminator.
const (
	rewardInfoSpan        = 169
	poolStateSpan         = 1536
	tickStateSpan         = 168
	tickArraySpan         = 10232
	bitmapExtensionSpan   = 1824
	ammConfigSpan         = 109
	PoolStateAccountSize  = poolStateSpan + 8
	TickArrayAccountSize  = tickArraySpan + 8
	BitmapExtAccountSize  = bitmapExtensionSpan + 8
	AmmConfigAccountSize  = ammConfigSpan + 8
	tickStatePaddingWords = 13
)

type RewardInfo struct {
	RewardState           uint8
	OpenTime              uint64
	EndTime               uint64
	LastUpdateTime        uint64
	EmissionsPerSecondX64 binary.Uint128
	RewardTotalEmissioned uint64
	RewardClaimed         uint64
	TokenMint             solana.PublicKey
	TokenVault            solana.PublicKey
	Authority             solana.PublicKey
	RewardGrowthGlobalX64 binary.Uint128
}

func (obj *RewardInfo) read(r *layout.Reader) {
	obj.RewardState = r.U8()
	obj.OpenTime = r.U64()
	obj.EndTime = r.U64()
	obj.LastUpdateTime = r.U64()
	obj.EmissionsPerSecondX64 = r.U128()
	obj.RewardTotalEmissioned = r.U64()
	obj.RewardClaimed = r.U64()
	obj.TokenMint = r.PublicKey()
	obj.TokenVault = r.PublicKey()
	obj.Authority = r.PublicKey()
	obj.RewardGrowthGlobalX64 = r.U128()
}

func (obj *RewardInfo) write(w *layout.Writer) {
	w.U8(obj.RewardState)
	w.U64(obj.OpenTime)
	w.U64(obj.EndTime)
	w.U64(obj.LastUpdateTime)
	w.U128(obj.EmissionsPerSecondX64)
	w.U64(obj.RewardTotalEmissioned)
	w.U64(obj.RewardClaimed)
	w.PublicKey(obj.TokenMint)
	w.PublicKey(obj.TokenVault)
	w.PublicKey(obj.Authority)
	w.U128(obj.RewardGrowthGlobalX64)
}

// PoolStateLayout is the CLMM PoolState account.
type PoolStateLayout struct {
	Bump                   uint8
	AmmConfig              solana.PublicKey
	Owner                  solana.PublicKey
	TokenMint0             solana.PublicKey
	TokenMint1             solana.PublicKey
	TokenVault0            solana.PublicKey
	TokenVault1            solana.PublicKey
	ObservationKey         solana.PublicKey
	MintDecimals0          uint8
	MintDecimals1          uint8
	TickSpacing            uint16
	Liquidity              binary.Uint128
	SqrtPriceX64           binary.Uint128
	TickCurrent            int32
	Padding3               uint16
	Padding4               uint16
	FeeGrowthGlobal0X64    binary.Uint128
	FeeGrowthGlobal1X64    binary.Uint128
	ProtocolFeesToken0     uint64
	ProtocolFeesToken1     uint64
	SwapInAmountToken0     binary.Uint128
	SwapOutAmountToken1    binary.Uint128
	SwapInAmountToken1     binary.Uint128
	SwapOutAmountToken0    binary.Uint128
	Status                 uint8
	RewardInfos            [tick.RewardNum]RewardInfo
	TickArrayBitmap        [tick.BitmapWords]uint64
	TotalFeesToken0        uint64
	TotalFeesClaimedToken0 uint64
	TotalFeesToken1        uint64
	TotalFeesClaimedToken1 uint64
	FundFeesToken0         uint64
	FundFeesToken1         uint64
	OpenTime               uint64
	RecentEpoch            uint64
}

func (*PoolStateLayout) Discriminator() []byte { return poolStateDiscriminator }

func (*PoolStateLayout) Span() int { return poolStateSpan }

func (obj *PoolStateLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.Bump = r.U8()
	obj.AmmConfig = r.PublicKey()
	obj.Owner = r.PublicKey()
	obj.TokenMint0 = r.PublicKey()
	obj.TokenMint1 = r.PublicKey()
	obj.TokenVault0 = r.PublicKey()
	obj.TokenVault1 = r.PublicKey()
	obj.ObservationKey = r.PublicKey()
	obj.MintDecimals0 = r.U8()
	obj.MintDecimals1 = r.U8()
	obj.TickSpacing = r.U16()
	obj.Liquidity = r.U128()
	obj.SqrtPriceX64 = r.U128()
	obj.TickCurrent = r.I32()
	obj.Padding3 = r.U16()
	obj.Padding4 = r.U16()
	obj.FeeGrowthGlobal0X64 = r.U128()
	obj.FeeGrowthGlobal1X64 = r.U128()
	obj.ProtocolFeesToken0 = r.U64()
	obj.ProtocolFeesToken1 = r.U64()
	obj.SwapInAmountToken0 = r.U128()
	obj.SwapOutAmountToken1 = r.U128()
	obj.SwapInAmountToken1 = r.U128()
	obj.SwapOutAmountToken0 = r.U128()
	obj.Status = r.U8()
	r.Skip(7)
	for i := range obj.RewardInfos {
		obj.RewardInfos[i].read(r)
	}
	for i := range obj.TickArrayBitmap {
		obj.TickArrayBitmap[i] = r.U64()
	}
	obj.TotalFeesToken0 = r.U64()
	obj.TotalFeesClaimedToken0 = r.U64()
	obj.TotalFeesToken1 = r.U64()
	obj.TotalFeesClaimedToken1 = r.U64()
	obj.FundFeesToken0 = r.U64()
	obj.FundFeesToken1 = r.U64()
	obj.OpenTime = r.U64()
	obj.RecentEpoch = r.U64()
	r.Skip(8 * (24 + 32))
	return r.Err()
}

func (obj *PoolStateLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U8(obj.Bump)
	w.PublicKey(obj.AmmConfig)
	w.PublicKey(obj.Owner)
	w.PublicKey(obj.TokenMint0)
	w.PublicKey(obj.TokenMint1)
	w.PublicKey(obj.TokenVault0)
	w.PublicKey(obj.TokenVault1)
	w.PublicKey(obj.ObservationKey)
	w.U8(obj.MintDecimals0)
	w.U8(obj.MintDecimals1)
	w.U16(obj.TickSpacing)
	w.U128(obj.Liquidity)
	w.U128(obj.SqrtPriceX64)
	w.I32(obj.TickCurrent)
	w.U16(obj.Padding3)
	w.U16(obj.Padding4)
	w.U128(obj.FeeGrowthGlobal0X64)
	w.U128(obj.FeeGrowthGlobal1X64)
	w.U64(obj.ProtocolFeesToken0)
	w.U64(obj.ProtocolFeesToken1)
	w.U128(obj.SwapInAmountToken0)
	w.U128(obj.SwapOutAmountToken1)
	w.U128(obj.SwapInAmountToken1)
	w.U128(obj.SwapOutAmountToken0)
	w.U8(obj.Status)
	w.Zero(7)
	for i := range obj.RewardInfos {
		obj.RewardInfos[i].write(w)
	}
	for _, word := range obj.TickArrayBitmap {
		w.U64(word)
	}
	w.U64(obj.TotalFeesToken0)
	w.U64(obj.TotalFeesClaimedToken0)
	w.U64(obj.TotalFeesToken1)
	w.U64(obj.TotalFeesClaimedToken1)
	w.U64(obj.FundFeesToken0)
	w.U64(obj.FundFeesToken1)
	w.U64(obj.OpenTime)
	w.U64(obj.RecentEpoch)
	w.Zero(8 * (24 + 32))
	return w.Err()
}

// TickStateLayout is one slot of a TickArrayState account.
type TickStateLayout struct {
	Tick                    int32
	LiquidityNet            binary.Int128
	LiquidityGross          binary.Uint128
	FeeGrowthOutside0X64    binary.Uint128
	FeeGrowthOutside1X64    binary.Uint128
	RewardGrowthsOutsideX64 [tick.RewardNum]binary.Uint128
}

func (obj *TickStateLayout) read(r *layout.Reader) {
	obj.Tick = r.I32()
	obj.LiquidityNet = r.I128()
	obj.LiquidityGross = r.U128()
	obj.FeeGrowthOutside0X64 = r.U128()
	obj.FeeGrowthOutside1X64 = r.U128()
	for i := range obj.RewardGrowthsOutsideX64 {
		obj.RewardGrowthsOutsideX64[i] = r.U128()
	}
	r.Skip(4 * tickStatePaddingWords)
}

func (obj *TickStateLayout) write(w *layout.Writer) {
	w.I32(obj.Tick)
	w.I128(obj.LiquidityNet)
	w.U128(obj.LiquidityGross)
	w.U128(obj.FeeGrowthOutside0X64)
	w.U128(obj.FeeGrowthOutside1X64)
	for _, v := range obj.RewardGrowthsOutsideX64 {
		w.U128(v)
	}
	w.Zero(4 * tickStatePaddingWords)
}

// TickArrayLayout is the TickArrayState account.
type TickArrayLayout struct {
	PoolID               solana.PublicKey
	StartTickIndex       int32
	Ticks                [60]TickStateLayout
	InitializedTickCount uint8
}

func (*TickArrayLayout) Discriminator() []byte { return tickArrayDiscriminator }

func (*TickArrayLayout) Span() int { return tickArraySpan }

func (obj *TickArrayLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.PoolID = r.PublicKey()
	obj.StartTickIndex = r.I32()
	for i := range obj.Ticks {
		obj.Ticks[i].read(r)
	}
	obj.InitializedTickCount = r.U8()
	r.Skip(115)
	return r.Err()
}

func (obj *TickArrayLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.PublicKey(obj.PoolID)
	w.I32(obj.StartTickIndex)
	for i := range obj.Ticks {
		obj.Ticks[i].write(w)
	}
	w.U8(obj.InitializedTickCount)
	w.Zero(115)
	return w.Err()
}

// TickArrayBitmapExtensionLayout is the TickArrayBitmapExtension account.
type TickArrayBitmapExtensionLayout struct {
	PoolID                  solana.PublicKey
	PositiveTickArrayBitmap [tick.ExtensionChunks][tick.ChunkWords]uint64
	NegativeTickArrayBitmap [tick.ExtensionChunks][tick.ChunkWords]uint64
}

func (*TickArrayBitmapExtensionLayout) Discriminator() []byte { return bitmapExtensionDiscriminator }

func (*TickArrayBitmapExtensionLayout) Span() int { return bitmapExtensionSpan }

func (obj *TickArrayBitmapExtensionLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.PoolID = r.PublicKey()
	for i := range obj.PositiveTickArrayBitmap {
		for j := range obj.PositiveTickArrayBitmap[i] {
			obj.PositiveTickArrayBitmap[i][j] = r.U64()
		}
	}
	for i := range obj.NegativeTickArrayBitmap {
		for j := range obj.NegativeTickArrayBitmap[i] {
			obj.NegativeTickArrayBitmap[i][j] = r.U64()
		}
	}
	return r.Err()
}

func (obj *TickArrayBitmapExtensionLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.PublicKey(obj.PoolID)
	for _, chunk := range obj.PositiveTickArrayBitmap {
		for _, word := range chunk {
			w.U64(word)
		}
	}
	for _, chunk := range obj.NegativeTickArrayBitmap {
		for _, word := range chunk {
			w.U64(word)
		}
	}
	return w.Err()
}

// AmmConfigLayout is the AmmConfig account. Fee rates are per 1e6.
type AmmConfigLayout struct {
	Bump            uint8
	Index           uint16
	Owner           solana.PublicKey
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
	PaddingU32      uint32
	FundOwner       solana.PublicKey
}

func (*AmmConfigLayout) Discriminator() []byte { return ammConfigDiscriminator }

func (*AmmConfigLayout) Span() int { return ammConfigSpan }

func (obj *AmmConfigLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.Bump = r.U8()
	obj.Index = r.U16()
	obj.Owner = r.PublicKey()
	obj.ProtocolFeeRate = r.U32()
	obj.TradeFeeRate = r.U32()
	obj.TickSpacing = r.U16()
	obj.FundFeeRate = r.U32()
	obj.PaddingU32 = r.U32()
	obj.FundOwner = r.PublicKey()
	r.Skip(8 * 3)
	return r.Err()
}

func (obj *AmmConfigLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U8(obj.Bump)
	w.U16(obj.Index)
	w.PublicKey(obj.Owner)
	w.U32(obj.ProtocolFeeRate)
	w.U32(obj.TradeFeeRate)
	w.U16(obj.TickSpacing)
	w.U32(obj.FundFeeRate)
	w.U32(obj.PaddingU32)
	w.PublicKey(obj.FundOwner)
	w.Zero(8 * 3)
	return w.Err()
}

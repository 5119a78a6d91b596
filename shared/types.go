package shared

import (
	"math/big"
)

// Enums and common types shared by the clmm, amm and route packages.
type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

type TradeDirection uint8

const (
	TradeDirectionAtoB TradeDirection = 0
	TradeDirectionBtoA TradeDirection = 1
)

type SwapMode uint8

const (
	SwapModeExactIn  SwapMode = 0
	SwapModeExactOut SwapMode = 1
)

func (m SwapMode) String() string {
	switch m {
	case SwapModeExactIn:
		return "exact-in"
	case SwapModeExactOut:
		return "exact-out"
	}
	return "unknown"
}

// PoolVersion is the Raydium pool version tag: 4 and 5 are the legacy AMM
// programs, 6 is the concentrated liquidity program.
type PoolVersion uint8

const (
	PoolVersionV4   PoolVersion = 4
	PoolVersionV5   PoolVersion = 5
	PoolVersionClmm PoolVersion = 6
)

const (
	ScaleOffset = 64

	// FeeRateDenominator is the CLMM fee rate base (AmmConfig.tradeFeeRate is per million).
	FeeRateDenominator = 1_000_000

	BasisPointMax = 10_000
)

var (
	OneQ64  = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)
	MaxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	U64Max  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
)

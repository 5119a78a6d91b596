// Package tick indexes the initialized tick-array pages of one CLMM pool.
package tick

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
)

const RewardNum = 3

// Tick is one slot of a tick-array page.
type Tick struct {
	Tick                    int32
	LiquidityNet            *big.Int
	LiquidityGross          *big.Int
	FeeGrowthOutsideX64A    *big.Int
	FeeGrowthOutsideX64B    *big.Int
	RewardGrowthsOutsideX64 [RewardNum]*big.Int
}

// IsInitialized reports whether any position references the tick.
func (t *Tick) IsInitialized() bool {
	return t.LiquidityGross != nil && t.LiquidityGross.Sign() > 0
}

// Page is a decoded tick array: 60 consecutive ticks starting at StartTickIndex.
type Page struct {
	PoolID               solana.PublicKey
	StartTickIndex       int32
	Ticks                [clmmmath.TickArraySize]Tick
	InitializedTickCount uint8
}

// InitializedTicksIn returns the slots of page with positive gross liquidity, in tick order.
func InitializedTicksIn(page *Page) []Tick {
	var out []Tick
	for i := range page.Ticks {
		if page.Ticks[i].IsInitialized() {
			out = append(out, page.Ticks[i])
		}
	}
	return out
}

// TicksPerPage is the tick width covered by one page.
func TicksPerPage(tickSpacing int32) int32 {
	return tickSpacing * clmmmath.TickArraySize
}

// PageStartFor returns the start index of the page holding tick. It floors
// toward negative infinity.
func PageStartFor(tick, tickSpacing int32) int32 {
	width := TicksPerPage(tickSpacing)
	start := tick / width
	if tick < 0 && tick%width != 0 {
		start--
	}
	return start * width
}

// OffsetInPage returns the slot of tick within its page, or -1 if tick is
// not a multiple of tickSpacing.
func OffsetInPage(tick, tickSpacing int32) int {
	if tick%tickSpacing != 0 {
		return -1
	}
	return int((tick - PageStartFor(tick, tickSpacing)) / tickSpacing)
}

// pageIndex is the signed ordinal of the page starting at start.
func pageIndex(start, tickSpacing int32) int32 {
	return PageStartFor(start, tickSpacing) / TicksPerPage(tickSpacing)
}

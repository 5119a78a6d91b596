package math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/shared"
)

// tickRatios[i] is 2^64 / sqrt(1.0001)^(2^(i+1)) in Q64.64, truncated.
var tickRatios = []*big.Int{
	bigIntFromString("18444899583751176192"),
	bigIntFromString("18443055278223355904"),
	bigIntFromString("18439367220385607680"),
	bigIntFromString("18431993317065453568"),
	bigIntFromString("18417254355718170624"),
	bigIntFromString("18387811781193609216"),
	bigIntFromString("18329067761203558400"),
	bigIntFromString("18212142134806163456"),
	bigIntFromString("17980523815641700352"),
	bigIntFromString("17526086738831433728"),
	bigIntFromString("16651378430235570176"),
	bigIntFromString("15030750278694412288"),
	bigIntFromString("12247334978884435968"),
	bigIntFromString("8131365268886854656"),
	bigIntFromString("3584323654725218816"),
	bigIntFromString("696457651848324352"),
	bigIntFromString("26294789957507116"),
	bigIntFromString("37481735321082"),
}

var oddTickRatio = bigIntFromString("18445821805675395072")

// Bounds accepted by TickFromSqrtPriceX64: the wider of the published
// constants and the table evaluated at the tick bounds.
var (
	lowestSqrtPriceX64  = minBig(MinSqrtPriceX64, mustSqrtPriceX64FromTick(MinTick))
	highestSqrtPriceX64 = maxBig(MaxSqrtPriceX64, mustSqrtPriceX64FromTick(MaxTick))
)

// SqrtPriceX64FromTick returns sqrt(1.0001^tick) in Q64.64, computed with
// the same truncating multiply-shift sequence as the on-chain program.
func SqrtPriceX64FromTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: tick %d outside [%d, %d]", shared.ErrRange, tick, MinTick, MaxTick)
	}
	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(big.Int)
	if absTick&1 != 0 {
		ratio.Set(oddTickRatio)
	} else {
		ratio.Set(shared.OneQ64)
	}
	for i, m := range tickRatios {
		if absTick&(int32(2)<<i) != 0 {
			ratio.Mul(ratio, m)
			ratio.Rsh(ratio, shared.ScaleOffset)
		}
	}

	if tick > 0 {
		ratio.Div(shared.MaxU128, ratio)
	}
	return ratio, nil
}

// TickFromSqrtPriceX64 returns the greatest tick whose sqrt price does not
// exceed sqrtPriceX64.
func TickFromSqrtPriceX64(sqrtPriceX64 *big.Int) (int32, error) {
	if sqrtPriceX64 == nil || sqrtPriceX64.Cmp(lowestSqrtPriceX64) < 0 || sqrtPriceX64.Cmp(highestSqrtPriceX64) > 0 {
		return 0, fmt.Errorf("%w: sqrt price %s outside [%s, %s]",
			shared.ErrRange, sqrtPriceX64, MinSqrtPriceX64, MaxSqrtPriceX64)
	}

	lo, hi := MinTick, MaxTick
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		p, err := SqrtPriceX64FromTick(mid)
		if err != nil {
			return 0, err
		}
		if p.Cmp(sqrtPriceX64) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}

// TickFromPrice returns the tick whose bracket contains price.
func TickFromPrice(price decimal.Decimal, decimalsA, decimalsB int32) (int32, error) {
	sqrtPriceX64, err := PriceToSqrtPriceX64(price, decimalsA, decimalsB)
	if err != nil {
		return 0, err
	}
	return TickFromSqrtPriceX64(sqrtPriceX64)
}

// TickFromPriceAligned snaps the tick of price to the nearest multiple of
// tickSpacing that lies inside the tick range.
func TickFromPriceAligned(price decimal.Decimal, tickSpacing, decimalsA, decimalsB int32) (int32, error) {
	if tickSpacing <= 0 {
		return 0, fmt.Errorf("%w: tick spacing %d", shared.ErrRange, tickSpacing)
	}
	tick, err := TickFromPrice(price, decimalsA, decimalsB)
	if err != nil {
		return 0, err
	}

	q := floorDiv(tick, tickSpacing)
	if 2*(tick-q*tickSpacing) >= tickSpacing {
		q++
	}
	aligned := q * tickSpacing
	for aligned > MaxTick {
		aligned -= tickSpacing
	}
	for aligned < MinTick {
		aligned += tickSpacing
	}
	return aligned, nil
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mustSqrtPriceX64FromTick(tick int32) *big.Int {
	v, err := SqrtPriceX64FromTick(tick)
	if err != nil {
		panic(err)
	}
	return v
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func maxBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

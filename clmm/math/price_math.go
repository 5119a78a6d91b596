package math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/decimal_math"
	"github.com/krazyTry/raydium-go/shared"
)

// PriceToSqrtPriceX64 converts a human price of token A in token B into a
// Q64.64 sqrt price, clamped strictly inside the supported range.
func PriceToSqrtPriceX64(price decimal.Decimal, decimalsA, decimalsB int32) (*big.Int, error) {
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("%w: price %s must be positive", shared.ErrRange, price)
	}
	scaled := price.Mul(decimal_math.Pow10(decimalsB - decimalsA))
	root, err := decimal_math.Sqrt(scaled, decimal_math.SqrtPrecision)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRange, err)
	}
	sqrtPriceX64 := DecimalToX64(root)

	lower := new(big.Int).Add(MinSqrtPriceX64, big.NewInt(1))
	upper := new(big.Int).Sub(MaxSqrtPriceX64, big.NewInt(1))
	if sqrtPriceX64.Cmp(lower) < 0 {
		return lower, nil
	}
	if sqrtPriceX64.Cmp(upper) > 0 {
		return upper, nil
	}
	return sqrtPriceX64, nil
}

// SqrtPriceX64ToPrice returns the human price of token A in token B.
func SqrtPriceX64ToPrice(sqrtPriceX64 *big.Int, decimalsA, decimalsB int32) decimal.Decimal {
	root := X64ToDecimal(sqrtPriceX64)
	return root.Mul(root).Mul(decimal_math.Pow10(decimalsA - decimalsB))
}

// TickToPrice is SqrtPriceX64ToPrice of the tick's sqrt price.
func TickToPrice(tick, decimalsA, decimalsB int32) (decimal.Decimal, error) {
	sqrtPriceX64, err := SqrtPriceX64FromTick(tick)
	if err != nil {
		return decimal.Zero, err
	}
	return SqrtPriceX64ToPrice(sqrtPriceX64, decimalsA, decimalsB), nil
}

package math

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/decimal_math"
	"github.com/krazyTry/raydium-go/shared"
)

func MulDiv(x, y, denominator *big.Int, rounding shared.Rounding) *big.Int {
	if denominator.Sign() == 0 {
		return big.NewInt(0)
	}
	mul := new(big.Int).Mul(x, y)
	div, mod := new(big.Int).QuoRem(mul, denominator, new(big.Int))
	if rounding == shared.RoundingUp && mod.Sign() != 0 {
		return div.Add(div, big.NewInt(1))
	}
	return div
}

// DivRoundingUp is ceil(x / y) for non-negative operands.
func DivRoundingUp(x, y *big.Int) *big.Int {
	div, mod := new(big.Int).QuoRem(x, y, new(big.Int))
	if mod.Sign() != 0 {
		div.Add(div, big.NewInt(1))
	}
	return div
}

func X64ToDecimal(num *big.Int) decimal.Decimal {
	if num == nil {
		return decimal.Zero
	}
	// 2^-64 has exactly 64 decimal places, so this division is exact.
	return decimal.NewFromBigInt(num, 0).DivRound(decimal.NewFromBigInt(shared.OneQ64, 0), 64)
}

func DecimalToX64(num decimal.Decimal) *big.Int {
	return num.Mul(decimal_math.Lsh(decimal.NewFromInt(1), shared.ScaleOffset)).Floor().BigInt()
}

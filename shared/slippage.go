package shared

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MinAmountWithSlippage is floor(amount * (1 - slippage)).
func MinAmountWithSlippage(amount *big.Int, slippage decimal.Decimal) *big.Int {
	return decimal.NewFromBigInt(amount, 0).Mul(decimal.NewFromInt(1).Sub(slippage)).Floor().BigInt()
}

// MaxAmountWithSlippage is ceil(amount * (1 + slippage)).
func MaxAmountWithSlippage(amount *big.Int, slippage decimal.Decimal) *big.Int {
	return decimal.NewFromBigInt(amount, 0).Mul(decimal.NewFromInt(1).Add(slippage)).Ceil().BigInt()
}

// PriceImpact is the relative deviation |execution - current| / current.
func PriceImpact(current, execution decimal.Decimal) decimal.Decimal {
	if current.IsZero() {
		return decimal.Zero
	}
	return execution.Sub(current).Abs().DivRound(current, 18)
}

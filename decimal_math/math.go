package decimal_math

import (
	"github.com/shopspring/decimal"
)

// Pow10 returns 10^n exactly, for negative n too.
func Pow10(n int32) decimal.Decimal {
	return decimal.New(1, n)
}

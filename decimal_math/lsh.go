package decimal_math

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Lsh shifts the integer part of x left by n bits.
func Lsh(x decimal.Decimal, n uint) decimal.Decimal {
	return decimal.NewFromBigInt(
		new(big.Int).Lsh(
			x.BigInt(),
			n,
		),
		0,
	)
}

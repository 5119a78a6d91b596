package decimal_math

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// SqrtPrecision is the mantissa width used for decimal square roots. It is
// wide enough for a Q64.64 value squared.
const SqrtPrecision = 256

// Sqrt returns the square root of x computed with prec bits of mantissa.
func Sqrt(x decimal.Decimal, prec uint) (decimal.Decimal, error) {
	if x.Sign() < 0 {
		return decimal.Zero, errors.New("sqrt on negative decimal")
	}
	if x.IsZero() {
		return decimal.Zero, nil
	}
	out, err := decimal.NewFromString(
		new(big.Float).SetPrec(prec).Sqrt(
			x.BigFloat().SetPrec(prec),
		).Text('f', -1),
	)
	if err != nil {
		return decimal.Zero, err
	}
	return out, nil
}

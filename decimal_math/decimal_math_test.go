package decimal_math

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSqrt(t *testing.T) {
	out, err := Sqrt(decimal.NewFromInt(144), SqrtPrecision)
	require.NoError(t, err)
	require.True(t, out.Equal(decimal.NewFromInt(12)), out.String())

	out, err = Sqrt(decimal.RequireFromString("0.0001"), SqrtPrecision)
	require.NoError(t, err)
	require.True(t, out.Sub(decimal.RequireFromString("0.01")).Abs().LessThan(decimal.New(1, -40)))

	_, err = Sqrt(decimal.NewFromInt(-1), SqrtPrecision)
	require.Error(t, err)
}

func TestPow10(t *testing.T) {
	require.True(t, Pow10(3).Equal(decimal.NewFromInt(1000)))
	require.True(t, Pow10(-2).Equal(decimal.RequireFromString("0.01")))
	require.True(t, Pow10(0).Equal(decimal.NewFromInt(1)))
}

func TestLsh(t *testing.T) {
	require.True(t, Lsh(decimal.NewFromInt(3), 64).Equal(decimal.RequireFromString("55340232221128654848")))
}

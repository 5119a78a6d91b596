package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/shared"
)

func TestTokenAmountsFromLiquidity(t *testing.T) {
	lower, err := SqrtPriceX64FromTick(-60)
	require.NoError(t, err)
	upper, err := SqrtPriceX64FromTick(60)
	require.NoError(t, err)
	liquidity := big.NewInt(1_000_000_000)

	up := GetTokenAmountAFromLiquidity(lower, upper, liquidity, shared.RoundingUp)
	down := GetTokenAmountAFromLiquidity(upper, lower, liquidity, shared.RoundingDown)
	require.True(t, up.Cmp(down) >= 0)
	require.True(t, new(big.Int).Sub(up, down).Cmp(big.NewInt(1)) <= 0)

	up = GetTokenAmountBFromLiquidity(lower, upper, liquidity, shared.RoundingUp)
	down = GetTokenAmountBFromLiquidity(lower, upper, liquidity, shared.RoundingDown)
	require.True(t, new(big.Int).Sub(up, down).Cmp(big.NewInt(1)) <= 0)
	// L * (sqrt(1.0001^60) - sqrt(1.0001^-60)) is about L * 0.006
	require.InDelta(t, 6_000_000, float64(down.Int64()), 1_000)
}

func TestNextSqrtPrice(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000_000)
	p := new(big.Int).Set(shared.OneQ64)

	down, err := GetNextSqrtPriceFromInput(p, liquidity, big.NewInt(1_000_000), true)
	require.NoError(t, err)
	require.Equal(t, -1, down.Cmp(p))

	up, err := GetNextSqrtPriceFromInput(p, liquidity, big.NewInt(1_000_000), false)
	require.NoError(t, err)
	require.Equal(t, 1, up.Cmp(p))

	// B out lowers the price, A out raises it
	down, err = GetNextSqrtPriceFromOutput(p, liquidity, big.NewInt(1_000_000), true)
	require.NoError(t, err)
	require.Equal(t, -1, down.Cmp(p))
	up, err = GetNextSqrtPriceFromOutput(p, liquidity, big.NewInt(1_000_000), false)
	require.NoError(t, err)
	require.Equal(t, 1, up.Cmp(p))

	_, err = GetNextSqrtPriceFromOutput(p, liquidity, liquidity, false)
	require.ErrorIs(t, err, shared.ErrInsufficientLiquidity)
	_, err = GetNextSqrtPriceFromInput(p, big.NewInt(0), big.NewInt(1), true)
	require.ErrorIs(t, err, shared.ErrInsufficientLiquidity)
}

func TestComputeSwapStepExactInPartial(t *testing.T) {
	p := new(big.Int).Set(shared.OneQ64)
	target, err := SqrtPriceX64FromTick(-60)
	require.NoError(t, err)
	liquidity := new(big.Int).SetUint64(1_000_000_000_000_000)
	amount := big.NewInt(1_000_000)

	step, err := ComputeSwapStep(p, target, liquidity, amount, 3000, true, true)
	require.NoError(t, err)
	require.NotEqual(t, 0, step.SqrtPriceNextX64.Cmp(target))
	require.Equal(t, -1, step.SqrtPriceNextX64.Cmp(p))

	// the whole remaining amount is consumed as input plus fee
	require.Equal(t, 0, new(big.Int).Add(step.AmountIn, step.FeeAmount).Cmp(amount))
	require.InDelta(t, 3000, float64(step.FeeAmount.Int64()), 1)
	require.InDelta(t, 997_000, float64(step.AmountOut.Int64()), 2)
}

func TestComputeSwapStepReachesTarget(t *testing.T) {
	p := new(big.Int).Set(shared.OneQ64)
	target, err := SqrtPriceX64FromTick(10)
	require.NoError(t, err)
	liquidity := big.NewInt(1_000_000)

	step, err := ComputeSwapStep(p, target, liquidity, big.NewInt(1_000_000_000), 2500, true, false)
	require.NoError(t, err)
	require.Equal(t, 0, step.SqrtPriceNextX64.Cmp(target))
	want := MulDiv(step.AmountIn, big.NewInt(2500), big.NewInt(shared.FeeRateDenominator-2500), shared.RoundingUp)
	require.Equal(t, 0, step.FeeAmount.Cmp(want))
	require.True(t, new(big.Int).Add(step.AmountIn, step.FeeAmount).Cmp(big.NewInt(1_000_000_000)) <= 0)
}

func TestComputeSwapStepExactOut(t *testing.T) {
	p := new(big.Int).Set(shared.OneQ64)
	target, err := SqrtPriceX64FromTick(-600)
	require.NoError(t, err)
	liquidity := new(big.Int).SetUint64(1_000_000_000_000)
	amountOut := big.NewInt(500_000)

	step, err := ComputeSwapStep(p, target, liquidity, amountOut, 500, false, true)
	require.NoError(t, err)
	require.True(t, step.AmountOut.Cmp(amountOut) <= 0)
	require.InDelta(t, 500_000, float64(step.AmountOut.Int64()), 1)
	require.True(t, step.AmountIn.Cmp(step.AmountOut) > 0)
	require.True(t, step.FeeAmount.Sign() > 0)
}

func TestComputeSwapStepZeroLiquidity(t *testing.T) {
	p := new(big.Int).Set(shared.OneQ64)
	target, err := SqrtPriceX64FromTick(-60)
	require.NoError(t, err)

	step, err := ComputeSwapStep(p, target, big.NewInt(0), big.NewInt(1000), 3000, true, true)
	require.NoError(t, err)
	require.Equal(t, 0, step.SqrtPriceNextX64.Cmp(target))
	require.Equal(t, 0, step.AmountIn.Sign())
	require.Equal(t, 0, step.AmountOut.Sign())
	require.Equal(t, 0, step.FeeAmount.Sign())
}

func TestMulDiv(t *testing.T) {
	require.Equal(t, int64(4), MulDiv(big.NewInt(5), big.NewInt(2), big.NewInt(3), shared.RoundingUp).Int64())
	require.Equal(t, int64(3), MulDiv(big.NewInt(5), big.NewInt(2), big.NewInt(3), shared.RoundingDown).Int64())
	require.Equal(t, int64(2), MulDiv(big.NewInt(3), big.NewInt(2), big.NewInt(3), shared.RoundingUp).Int64())
	require.Equal(t, int64(0), MulDiv(big.NewInt(5), big.NewInt(2), big.NewInt(0), shared.RoundingUp).Int64())
	require.Equal(t, int64(4), DivRoundingUp(big.NewInt(10), big.NewInt(3)).Int64())
}

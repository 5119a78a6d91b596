package math

import (
	"math/big"

	"github.com/krazyTry/raydium-go/shared"
)

// SwapStep is the result of moving the price toward one target within a
// single liquidity segment.
type SwapStep struct {
	SqrtPriceNextX64 *big.Int
	AmountIn         *big.Int
	AmountOut        *big.Int
	FeeAmount        *big.Int
}

// amountInRange is the amount needed to move from current to target on the
// specified side. ok is false when the amount does not fit in a u64, in
// which case the step cannot reach the target.
func amountInRange(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity *big.Int, zeroForOne, isBaseInput bool) (amount *big.Int, ok bool) {
	switch {
	case isBaseInput && zeroForOne:
		amount = GetTokenAmountAFromLiquidity(sqrtPriceTargetX64, sqrtPriceCurrentX64, liquidity, shared.RoundingUp)
	case isBaseInput:
		amount = GetTokenAmountBFromLiquidity(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, shared.RoundingUp)
	case zeroForOne:
		amount = GetTokenAmountBFromLiquidity(sqrtPriceTargetX64, sqrtPriceCurrentX64, liquidity, shared.RoundingDown)
	default:
		amount = GetTokenAmountAFromLiquidity(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, shared.RoundingDown)
	}
	return amount, amount.Cmp(shared.U64Max) <= 0
}

// ComputeSwapStep mirrors the on-chain compute_swap_step. feeRate is per
// FeeRateDenominator. For exact input the fee is taken from amountRemaining;
// for exact output amountRemaining is the output still owed.
func ComputeSwapStep(
	sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, amountRemaining *big.Int,
	feeRate uint32,
	isBaseInput, zeroForOne bool,
) (*SwapStep, error) {
	denominator := big.NewInt(shared.FeeRateDenominator)
	fee := big.NewInt(int64(feeRate))
	denominatorLessFee := new(big.Int).Sub(denominator, fee)

	step := &SwapStep{
		AmountIn:  big.NewInt(0),
		AmountOut: big.NewInt(0),
		FeeAmount: big.NewInt(0),
	}

	if isBaseInput {
		amountRemainingLessFee := MulDiv(amountRemaining, denominatorLessFee, denominator, shared.RoundingDown)
		amountIn, ok := amountInRange(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, zeroForOne, true)
		if ok {
			step.AmountIn = amountIn
		}
		if ok && amountRemainingLessFee.Cmp(step.AmountIn) >= 0 {
			step.SqrtPriceNextX64 = new(big.Int).Set(sqrtPriceTargetX64)
		} else {
			next, err := GetNextSqrtPriceFromInput(sqrtPriceCurrentX64, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return nil, err
			}
			step.SqrtPriceNextX64 = next
		}
	} else {
		amountOut, ok := amountInRange(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, zeroForOne, false)
		if ok {
			step.AmountOut = amountOut
		}
		if ok && amountRemaining.Cmp(step.AmountOut) >= 0 {
			step.SqrtPriceNextX64 = new(big.Int).Set(sqrtPriceTargetX64)
		} else {
			next, err := GetNextSqrtPriceFromOutput(sqrtPriceCurrentX64, liquidity, amountRemaining, zeroForOne)
			if err != nil {
				return nil, err
			}
			step.SqrtPriceNextX64 = next
		}
	}

	reachedTarget := step.SqrtPriceNextX64.Cmp(sqrtPriceTargetX64) == 0

	if zeroForOne {
		if !(reachedTarget && isBaseInput) {
			step.AmountIn = GetTokenAmountAFromLiquidity(step.SqrtPriceNextX64, sqrtPriceCurrentX64, liquidity, shared.RoundingUp)
		}
		if !(reachedTarget && !isBaseInput) {
			step.AmountOut = GetTokenAmountBFromLiquidity(step.SqrtPriceNextX64, sqrtPriceCurrentX64, liquidity, shared.RoundingDown)
		}
	} else {
		if !(reachedTarget && isBaseInput) {
			step.AmountIn = GetTokenAmountBFromLiquidity(sqrtPriceCurrentX64, step.SqrtPriceNextX64, liquidity, shared.RoundingUp)
		}
		if !(reachedTarget && !isBaseInput) {
			step.AmountOut = GetTokenAmountAFromLiquidity(sqrtPriceCurrentX64, step.SqrtPriceNextX64, liquidity, shared.RoundingDown)
		}
	}

	if !isBaseInput && step.AmountOut.Cmp(amountRemaining) > 0 {
		step.AmountOut = new(big.Int).Set(amountRemaining)
	}

	if isBaseInput && !reachedTarget {
		step.FeeAmount = new(big.Int).Sub(amountRemaining, step.AmountIn)
	} else {
		step.FeeAmount = MulDiv(step.AmountIn, fee, denominatorLessFee, shared.RoundingUp)
	}
	return step, nil
}

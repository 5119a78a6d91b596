package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/raydium-go/shared"
)

// GetTokenAmountAFromLiquidity returns L * (sqrtB - sqrtA) / (sqrtA * sqrtB)
// with Q64.64 prices. The two prices may be passed in either order.
func GetTokenAmountAFromLiquidity(sqrtPriceX64A, sqrtPriceX64B, liquidity *big.Int, rounding shared.Rounding) *big.Int {
	if sqrtPriceX64A.Cmp(sqrtPriceX64B) > 0 {
		sqrtPriceX64A, sqrtPriceX64B = sqrtPriceX64B, sqrtPriceX64A
	}
	if sqrtPriceX64A.Sign() <= 0 {
		return big.NewInt(0)
	}
	numerator1 := new(big.Int).Lsh(liquidity, shared.ScaleOffset)
	numerator2 := new(big.Int).Sub(sqrtPriceX64B, sqrtPriceX64A)

	if rounding == shared.RoundingUp {
		return DivRoundingUp(MulDiv(numerator1, numerator2, sqrtPriceX64B, shared.RoundingUp), sqrtPriceX64A)
	}
	return new(big.Int).Div(MulDiv(numerator1, numerator2, sqrtPriceX64B, shared.RoundingDown), sqrtPriceX64A)
}

// GetTokenAmountBFromLiquidity returns L * (sqrtB - sqrtA) / 2^64.
func GetTokenAmountBFromLiquidity(sqrtPriceX64A, sqrtPriceX64B, liquidity *big.Int, rounding shared.Rounding) *big.Int {
	if sqrtPriceX64A.Cmp(sqrtPriceX64B) > 0 {
		sqrtPriceX64A, sqrtPriceX64B = sqrtPriceX64B, sqrtPriceX64A
	}
	diff := new(big.Int).Sub(sqrtPriceX64B, sqrtPriceX64A)
	return MulDiv(liquidity, diff, shared.OneQ64, rounding)
}

func getNextSqrtPriceFromAmountARoundingUp(sqrtPriceX64, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPriceX64), nil
	}
	numerator1 := new(big.Int).Lsh(liquidity, shared.ScaleOffset)
	product := new(big.Int).Mul(amount, sqrtPriceX64)

	if add {
		denominator := new(big.Int).Add(numerator1, product)
		return MulDiv(numerator1, sqrtPriceX64, denominator, shared.RoundingUp), nil
	}
	if numerator1.Cmp(product) <= 0 {
		return nil, fmt.Errorf("%w: output of token A exceeds virtual reserve", shared.ErrInsufficientLiquidity)
	}
	denominator := new(big.Int).Sub(numerator1, product)
	return MulDiv(numerator1, sqrtPriceX64, denominator, shared.RoundingUp), nil
}

func getNextSqrtPriceFromAmountBRoundingDown(sqrtPriceX64, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	deltaY := new(big.Int).Lsh(amount, shared.ScaleOffset)
	if add {
		return new(big.Int).Add(sqrtPriceX64, new(big.Int).Div(deltaY, liquidity)), nil
	}
	quotient := DivRoundingUp(deltaY, liquidity)
	if sqrtPriceX64.Cmp(quotient) <= 0 {
		return nil, fmt.Errorf("%w: output of token B exceeds virtual reserve", shared.ErrInsufficientLiquidity)
	}
	return new(big.Int).Sub(sqrtPriceX64, quotient), nil
}

// GetNextSqrtPriceFromInput moves the price by an input amount. zeroForOne
// means token A is the input and the price falls.
func GetNextSqrtPriceFromInput(sqrtPriceX64, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPriceX64.Sign() <= 0 {
		return nil, fmt.Errorf("%w: sqrt price must be positive", shared.ErrRange)
	}
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: liquidity must be positive", shared.ErrInsufficientLiquidity)
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmountARoundingUp(sqrtPriceX64, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmountBRoundingDown(sqrtPriceX64, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput moves the price by an output amount.
func GetNextSqrtPriceFromOutput(sqrtPriceX64, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPriceX64.Sign() <= 0 {
		return nil, fmt.Errorf("%w: sqrt price must be positive", shared.ErrRange)
	}
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: liquidity must be positive", shared.ErrInsufficientLiquidity)
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmountBRoundingDown(sqrtPriceX64, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmountARoundingUp(sqrtPriceX64, liquidity, amountOut, false)
}

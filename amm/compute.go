package amm

import (
	"fmt"
	"math"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/shared"
)

// ComputeAmountOutResult
type ComputeAmountOutResult struct {
	AmountIn     *big.Int
	AmountOut    *big.Int
	MinAmountOut *big.Int
	Fee          *big.Int

	CurrentPrice   decimal.Decimal
	ExecutionPrice decimal.Decimal
	PriceImpact    decimal.Decimal
}

// ComputeAmountInResult
type ComputeAmountInResult struct {
	AmountIn    *big.Int
	MaxAmountIn *big.Int
	AmountOut   *big.Int
	Fee         *big.Int

	CurrentPrice   decimal.Decimal
	ExecutionPrice decimal.Decimal
	PriceImpact    decimal.Decimal
}

// SwapFee is ceil(amount * numerator / denominator).
func SwapFee(amount *big.Int, numerator, denominator uint64) *big.Int {
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(numerator))
	return ceilDiv(fee, new(big.Int).SetUint64(denominator))
}

func ceilDiv(x, y *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// GetAmountOut is the constant product output for amountIn after the fee.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, numerator, denominator uint64) (amountOut, fee *big.Int, err error) {
	if amountIn.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: amount in must be positive", shared.ErrRange)
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: empty reserve", shared.ErrInsufficientLiquidity)
	}
	fee = SwapFee(amountIn, numerator, denominator)
	afterFee := new(big.Int).Sub(amountIn, fee)

	amountOut = new(big.Int).Mul(reserveOut, afterFee)
	amountOut.Quo(amountOut, new(big.Int).Add(reserveIn, afterFee))
	return amountOut, fee, nil
}

// GetAmountIn is the constant product input, fee included, that yields amountOut.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int, numerator, denominator uint64) (amountIn, fee *big.Int, err error) {
	if amountOut.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: amount out must be positive", shared.ErrRange)
	}
	if reserveIn.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, nil, fmt.Errorf("%w: amount out %s against reserve %s", shared.ErrInsufficientLiquidity, amountOut, reserveOut)
	}
	beforeFee := ceilDiv(
		new(big.Int).Mul(reserveIn, amountOut),
		new(big.Int).Sub(reserveOut, amountOut),
	)
	den := new(big.Int).SetUint64(denominator)
	amountIn = ceilDiv(
		new(big.Int).Mul(beforeFee, den),
		new(big.Int).Sub(den, new(big.Int).SetUint64(numerator)),
	)
	return amountIn, new(big.Int).Sub(amountIn, beforeFee), nil
}

// ComputeAmountOut quotes selling amountIn of inputMint.
func ComputeAmountOut(pool *Pool, inputMint solana.PublicKey, amountIn *big.Int, slippage decimal.Decimal) (*ComputeAmountOutResult, error) {
	baseIn, err := pool.BaseIn(inputMint)
	if err != nil {
		return nil, err
	}
	current, err := pool.CurrentPrice(baseIn)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut, decimalsIn, decimalsOut := pool.reserves(baseIn)

	var amountOut, fee *big.Int
	switch pool.Curve {
	case CurveStable:
		if amountIn.Sign() <= 0 {
			return nil, fmt.Errorf("%w: amount in must be positive", shared.ErrRange)
		}
		fee = SwapFee(amountIn, pool.SwapFeeNumerator, pool.SwapFeeDenominator)
		afterFee := bigToFloat(new(big.Int).Sub(amountIn, fee))
		var out float64
		if baseIn {
			out, err = pool.Model.DyByDxBaseIn(bigToFloat(pool.BaseReserve), bigToFloat(pool.QuoteReserve), afterFee)
		} else {
			out, err = pool.Model.DxByDyBaseIn(bigToFloat(pool.BaseReserve), bigToFloat(pool.QuoteReserve), afterFee)
		}
		if err != nil {
			return nil, err
		}
		amountOut = floorToInt(out)
		if amountOut.Cmp(reserveOut) >= 0 {
			return nil, fmt.Errorf("%w: stable output %s exceeds reserve %s", shared.ErrInsufficientLiquidity, amountOut, reserveOut)
		}
	default:
		amountOut, fee, err = GetAmountOut(amountIn, reserveIn, reserveOut, pool.SwapFeeNumerator, pool.SwapFeeDenominator)
		if err != nil {
			return nil, err
		}
	}

	execution := humanRatio(amountOut, amountIn, decimalsIn, decimalsOut)
	return &ComputeAmountOutResult{
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		MinAmountOut:   shared.MinAmountWithSlippage(amountOut, slippage),
		Fee:            fee,
		CurrentPrice:   current,
		ExecutionPrice: execution,
		PriceImpact:    shared.PriceImpact(current, execution),
	}, nil
}

// ComputeAmountIn quotes the input of inputMint needed to receive amountOut.
// Stable pools evaluate the curve in the opposite direction, so the input
// is an approximation rounded up.
func ComputeAmountIn(pool *Pool, inputMint solana.PublicKey, amountOut *big.Int, slippage decimal.Decimal) (*ComputeAmountInResult, error) {
	baseIn, err := pool.BaseIn(inputMint)
	if err != nil {
		return nil, err
	}
	current, err := pool.CurrentPrice(baseIn)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut, decimalsIn, decimalsOut := pool.reserves(baseIn)

	var amountIn, fee *big.Int
	switch pool.Curve {
	case CurveStable:
		if amountOut.Sign() <= 0 {
			return nil, fmt.Errorf("%w: amount out must be positive", shared.ErrRange)
		}
		if amountOut.Cmp(reserveOut) >= 0 {
			return nil, fmt.Errorf("%w: amount out %s against reserve %s", shared.ErrInsufficientLiquidity, amountOut, reserveOut)
		}
		var in float64
		if baseIn {
			in, err = pool.Model.DxByDyBaseIn(bigToFloat(pool.BaseReserve), bigToFloat(pool.QuoteReserve), bigToFloat(amountOut))
		} else {
			in, err = pool.Model.DyByDxBaseIn(bigToFloat(pool.BaseReserve), bigToFloat(pool.QuoteReserve), bigToFloat(amountOut))
		}
		if err != nil {
			return nil, err
		}
		beforeFee := floorToInt(math.Ceil(in))
		den := new(big.Int).SetUint64(pool.SwapFeeDenominator)
		amountIn = ceilDiv(
			new(big.Int).Mul(beforeFee, den),
			new(big.Int).Sub(den, new(big.Int).SetUint64(pool.SwapFeeNumerator)),
		)
		fee = new(big.Int).Sub(amountIn, beforeFee)
	default:
		amountIn, fee, err = GetAmountIn(amountOut, reserveIn, reserveOut, pool.SwapFeeNumerator, pool.SwapFeeDenominator)
		if err != nil {
			return nil, err
		}
	}

	execution := humanRatio(amountOut, amountIn, decimalsIn, decimalsOut)
	return &ComputeAmountInResult{
		AmountIn:       amountIn,
		MaxAmountIn:    shared.MaxAmountWithSlippage(amountIn, slippage),
		AmountOut:      amountOut,
		Fee:            fee,
		CurrentPrice:   current,
		ExecutionPrice: execution,
		PriceImpact:    shared.PriceImpact(current, execution),
	}, nil
}

// floorToInt truncates a non-negative curve result to token units.
func floorToInt(v float64) *big.Int {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return big.NewInt(0)
	}
	out, _ := new(big.Float).SetFloat64(math.Floor(v)).Int(nil)
	return out
}

package clmm

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/decimal_math"
	"github.com/krazyTry/raydium-go/shared"
)

// SwapResult is the outcome of simulating one swap against a pool.
type SwapResult struct {
	AmountIn  *big.Int
	AmountOut *big.Int
	Fee       *big.Int

	SqrtPriceX64 *big.Int
	Tick         int32
	Liquidity    *big.Int

	// ExecutionPrice is the output per input in human units.
	ExecutionPrice decimal.Decimal

	// TouchedPages lists the start indices of the tick arrays the swap reads, in order.
	TouchedPages []int32
	Steps        []*clmmmath.SwapStep

	// Incomplete is set when the swap stopped before filling the amount.
	Incomplete bool
}

// ZeroForOne reports whether selling inputMint moves the pool price down.
func (p *Pool) ZeroForOne(inputMint solana.PublicKey) (bool, error) {
	switch {
	case inputMint.Equals(p.MintA.Address):
		return true, nil
	case inputMint.Equals(p.MintB.Address):
		return false, nil
	}
	return false, fmt.Errorf("%w: %s is not a mint of pool %s", shared.ErrTokenNotFound, inputMint, p.ID)
}

// DefaultSqrtPriceLimit is the widest limit for the swap direction.
func DefaultSqrtPriceLimit(zeroForOne bool) *big.Int {
	if zeroForOne {
		return new(big.Int).Add(clmmmath.MinSqrtPriceX64, big.NewInt(1))
	}
	return new(big.Int).Sub(clmmmath.MaxSqrtPriceX64, big.NewInt(1))
}

// Simulate runs the on-chain swap loop off chain. amount is the input for
// SwapModeExactIn and the desired output for SwapModeExactOut. A nil or
// zero sqrtPriceLimitX64 selects DefaultSqrtPriceLimit.
//
// Running out of tick data, meeting a page the bitmap advertises but store
// lacks, or reaching the limit ends the swap with Incomplete set.
func Simulate(pool *Pool, store *tick.Store, inputMint solana.PublicKey, amount *big.Int, mode shared.SwapMode, sqrtPriceLimitX64 *big.Int) (*SwapResult, error) {
	zeroForOne, err := pool.ZeroForOne(inputMint)
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", shared.ErrRange)
	}
	if amount.Cmp(shared.U64Max) > 0 {
		return nil, fmt.Errorf("%w: amount %s exceeds u64", shared.ErrRange, amount)
	}

	limit := sqrtPriceLimitX64
	if limit == nil || limit.Sign() == 0 {
		limit = DefaultSqrtPriceLimit(zeroForOne)
	}
	if zeroForOne {
		if limit.Cmp(pool.SqrtPriceX64) >= 0 || limit.Cmp(clmmmath.MinSqrtPriceX64) <= 0 {
			return nil, fmt.Errorf("%w: sqrt price limit %s must be in (%s, %s)", shared.ErrRange, limit, clmmmath.MinSqrtPriceX64, pool.SqrtPriceX64)
		}
	} else {
		if limit.Cmp(pool.SqrtPriceX64) <= 0 || limit.Cmp(clmmmath.MaxSqrtPriceX64) >= 0 {
			return nil, fmt.Errorf("%w: sqrt price limit %s must be in (%s, %s)", shared.ErrRange, limit, pool.SqrtPriceX64, clmmmath.MaxSqrtPriceX64)
		}
	}

	isBaseInput := mode == shared.SwapModeExactIn

	var (
		remaining  = new(big.Int).Set(amount)
		calculated = big.NewInt(0)
		feeTotal   = big.NewInt(0)
		sqrtPrice  = new(big.Int).Set(pool.SqrtPriceX64)
		liquidity  = new(big.Int).Set(pool.Liquidity)
		current    = pool.TickCurrent
		touched    []int32
		seen       = make(map[int32]bool)
		steps      []*clmmmath.SwapStep
		incomplete bool
	)
	touch := func(start int32) {
		if !seen[start] {
			seen[start] = true
			touched = append(touched, start)
		}
	}
	if start, ok := store.FirstPageStart(current, zeroForOne); ok {
		touch(start)
	}

	for remaining.Sign() > 0 && sqrtPrice.Cmp(limit) != 0 && current < clmmmath.MaxTick && current > clmmmath.MinTick {
		sqrtPriceStart := new(big.Int).Set(sqrtPrice)

		next, pageStart, err := store.NextInitializedTick(current, zeroForOne)
		if err != nil {
			if errors.Is(err, tick.ErrPageMissing) || errors.Is(err, tick.ErrNoInitializedTick) {
				incomplete = true
				break
			}
			return nil, err
		}
		touch(pageStart)

		tickNext := next.Tick
		if tickNext < clmmmath.MinTick {
			tickNext = clmmmath.MinTick
		} else if tickNext > clmmmath.MaxTick {
			tickNext = clmmmath.MaxTick
		}
		sqrtPriceNext, err := clmmmath.SqrtPriceX64FromTick(tickNext)
		if err != nil {
			return nil, err
		}

		target := sqrtPriceNext
		if (zeroForOne && sqrtPriceNext.Cmp(limit) < 0) || (!zeroForOne && sqrtPriceNext.Cmp(limit) > 0) {
			target = limit
		}

		step, err := clmmmath.ComputeSwapStep(sqrtPrice, target, liquidity, remaining, pool.TradeFeeRate, isBaseInput, zeroForOne)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
		sqrtPrice = step.SqrtPriceNextX64

		if isBaseInput {
			remaining.Sub(remaining, step.AmountIn)
			remaining.Sub(remaining, step.FeeAmount)
			calculated.Add(calculated, step.AmountOut)
		} else {
			remaining.Sub(remaining, step.AmountOut)
			calculated.Add(calculated, step.AmountIn)
			calculated.Add(calculated, step.FeeAmount)
		}
		feeTotal.Add(feeTotal, step.FeeAmount)

		if sqrtPrice.Cmp(sqrtPriceNext) == 0 {
			net := new(big.Int).Set(next.LiquidityNet)
			if zeroForOne {
				net.Neg(net)
			}
			liquidity.Add(liquidity, net)
			if liquidity.Sign() < 0 {
				return nil, fmt.Errorf("%w: liquidity below zero crossing tick %d", shared.ErrInsufficientLiquidity, tickNext)
			}
			if zeroForOne {
				current = tickNext - 1
			} else {
				current = tickNext
			}
		} else if sqrtPrice.Cmp(sqrtPriceStart) != 0 {
			current, err = clmmmath.TickFromSqrtPriceX64(sqrtPrice)
			if err != nil {
				return nil, err
			}
		}
	}

	if remaining.Sign() > 0 {
		incomplete = true
	}

	result := &SwapResult{
		Fee:          feeTotal,
		SqrtPriceX64: sqrtPrice,
		Tick:         current,
		Liquidity:    liquidity,
		TouchedPages: touched,
		Steps:        steps,
		Incomplete:   incomplete,
	}
	filled := new(big.Int).Sub(amount, remaining)
	if isBaseInput {
		result.AmountIn = filled
		result.AmountOut = calculated
	} else {
		result.AmountIn = calculated
		result.AmountOut = filled
	}

	decIn, decOut := pool.MintA.Decimals, pool.MintB.Decimals
	if !zeroForOne {
		decIn, decOut = decOut, decIn
	}
	result.ExecutionPrice = executionPrice(result.AmountIn, result.AmountOut, int32(decIn), int32(decOut))
	return result, nil
}

func executionPrice(amountIn, amountOut *big.Int, decimalsIn, decimalsOut int32) decimal.Decimal {
	if amountIn.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amountOut, 0).
		Mul(decimal_math.Pow10(decimalsIn - decimalsOut)).
		DivRound(decimal.NewFromBigInt(amountIn, 0), 18)
}

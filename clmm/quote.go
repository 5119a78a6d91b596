package clmm

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
	"github.com/krazyTry/raydium-go/clmm/tick"
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
	PriceAfter     decimal.Decimal
	PriceImpact    decimal.Decimal

	SqrtPriceLimitX64 *big.Int
	// RemainingAccounts is the bitmap extension PDA followed by the touched tick arrays.
	RemainingAccounts []solana.PublicKey
	TickArrays        []solana.PublicKey
	AllTrade          bool
}

// ComputeAmountInResult
type ComputeAmountInResult struct {
	AmountIn    *big.Int
	MaxAmountIn *big.Int
	AmountOut   *big.Int
	Fee         *big.Int

	CurrentPrice   decimal.Decimal
	ExecutionPrice decimal.Decimal
	PriceAfter     decimal.Decimal
	PriceImpact    decimal.Decimal

	SqrtPriceLimitX64 *big.Int
	RemainingAccounts []solana.PublicKey
	TickArrays        []solana.PublicKey
	AllTrade          bool
}

// SqrtPriceLimitFromPrice converts an optional price limit of token A in
// token B. A zero price selects the default limit for the direction.
func SqrtPriceLimitFromPrice(pool *Pool, zeroForOne bool, priceLimit decimal.Decimal) (*big.Int, error) {
	if priceLimit.IsZero() {
		return DefaultSqrtPriceLimit(zeroForOne), nil
	}
	return clmmmath.PriceToSqrtPriceX64(priceLimit, int32(pool.MintA.Decimals), int32(pool.MintB.Decimals))
}

// ComputeAmountOut quotes selling amountIn of inputMint.
func ComputeAmountOut(
	pool *Pool,
	store *tick.Store,
	inputMint solana.PublicKey,
	amountIn *big.Int,
	slippage decimal.Decimal,
	priceLimit decimal.Decimal,
) (*ComputeAmountOutResult, error) {
	zeroForOne, err := pool.ZeroForOne(inputMint)
	if err != nil {
		return nil, err
	}
	limit, err := SqrtPriceLimitFromPrice(pool, zeroForOne, priceLimit)
	if err != nil {
		return nil, err
	}
	res, err := Simulate(pool, store, inputMint, amountIn, shared.SwapModeExactIn, limit)
	if err != nil {
		return nil, err
	}
	tickArrays, remaining, err := pool.remainingAccounts(res.TouchedPages)
	if err != nil {
		return nil, err
	}
	current, after := pool.directionalPrices(zeroForOne, res.SqrtPriceX64)

	return &ComputeAmountOutResult{
		AmountIn:          res.AmountIn,
		AmountOut:         res.AmountOut,
		MinAmountOut:      shared.MinAmountWithSlippage(res.AmountOut, slippage),
		Fee:               res.Fee,
		CurrentPrice:      current,
		ExecutionPrice:    res.ExecutionPrice,
		PriceAfter:        after,
		PriceImpact:       shared.PriceImpact(current, res.ExecutionPrice),
		SqrtPriceLimitX64: limit,
		RemainingAccounts: remaining,
		TickArrays:        tickArrays,
		AllTrade:          !res.Incomplete,
	}, nil
}

// ComputeAmountIn quotes the input of inputMint needed to receive amountOut.
func ComputeAmountIn(
	pool *Pool,
	store *tick.Store,
	inputMint solana.PublicKey,
	amountOut *big.Int,
	slippage decimal.Decimal,
	priceLimit decimal.Decimal,
) (*ComputeAmountInResult, error) {
	zeroForOne, err := pool.ZeroForOne(inputMint)
	if err != nil {
		return nil, err
	}
	limit, err := SqrtPriceLimitFromPrice(pool, zeroForOne, priceLimit)
	if err != nil {
		return nil, err
	}
	res, err := Simulate(pool, store, inputMint, amountOut, shared.SwapModeExactOut, limit)
	if err != nil {
		return nil, err
	}
	tickArrays, remaining, err := pool.remainingAccounts(res.TouchedPages)
	if err != nil {
		return nil, err
	}
	current, after := pool.directionalPrices(zeroForOne, res.SqrtPriceX64)

	return &ComputeAmountInResult{
		AmountIn:          res.AmountIn,
		MaxAmountIn:       shared.MaxAmountWithSlippage(res.AmountIn, slippage),
		AmountOut:         res.AmountOut,
		Fee:               res.Fee,
		CurrentPrice:      current,
		ExecutionPrice:    res.ExecutionPrice,
		PriceAfter:        after,
		PriceImpact:       shared.PriceImpact(current, res.ExecutionPrice),
		SqrtPriceLimitX64: limit,
		RemainingAccounts: remaining,
		TickArrays:        tickArrays,
		AllTrade:          !res.Incomplete,
	}, nil
}

// directionalPrices returns the spot price before and after the swap as
// output per input.
func (p *Pool) directionalPrices(zeroForOne bool, sqrtPriceAfter *big.Int) (decimal.Decimal, decimal.Decimal) {
	current := p.CurrentPrice()
	after := clmmmath.SqrtPriceX64ToPrice(sqrtPriceAfter, int32(p.MintA.Decimals), int32(p.MintB.Decimals))
	if zeroForOne {
		return current, after
	}
	return invert(current), invert(after)
}

func (p *Pool) remainingAccounts(pages []int32) ([]solana.PublicKey, []solana.PublicKey, error) {
	ext, err := DeriveBitmapExtensionAddress(p.ProgramID, p.ID)
	if err != nil {
		return nil, nil, err
	}
	tickArrays := make([]solana.PublicKey, 0, len(pages))
	for _, start := range pages {
		key, err := DeriveTickArrayAddress(p.ProgramID, p.ID, start)
		if err != nil {
			return nil, nil, fmt.Errorf("derive tick array %d: %w", start, err)
		}
		tickArrays = append(tickArrays, key)
	}
	return tickArrays, append([]solana.PublicKey{ext}, tickArrays...), nil
}

func invert(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).DivRound(d, 36)
}

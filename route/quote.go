package route

import (
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Hop is one leg of a route.
type Hop struct {
	PoolID     solana.PublicKey
	Kind       string
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	AmountIn     *big.Int
	AmountOut    *big.Int
	MinAmountOut *big.Int
	Fee          *big.Int

	CurrentPrice   decimal.Decimal
	ExecutionPrice decimal.Decimal
	PriceImpact    decimal.Decimal

	// RemainingAccounts is the bitmap extension and the tick arrays a
	// concentrated hop crosses. Empty for legacy hops.
	RemainingAccounts []solana.PublicKey
	AllTrade          bool

	pool              Pool
	tickArrays        []solana.PublicKey
	sqrtPriceLimitX64 *big.Int
}

// Pool returns the pool the hop trades through.
func (h *Hop) Pool() Pool { return h.pool }

// Route is one or two hops from the input mint to the output mint.
type Route struct {
	Hops []*Hop
}

func (r *Route) String() string {
	parts := make([]string, 0, len(r.Hops))
	for _, h := range r.Hops {
		parts = append(parts, h.Kind+":"+h.PoolID.String())
	}
	return strings.Join(parts, " -> ")
}

// RemainingAccounts lists the remaining accounts of every hop in order.
func (r *Route) RemainingAccounts() []solana.PublicKey {
	var out []solana.PublicKey
	for _, h := range r.Hops {
		out = append(out, h.RemainingAccounts...)
	}
	return out
}

// Quote is a priced route.
type Quote struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	// AmountIn is the caller's input; PlatformFee of it is withheld and
	// the rest is routed.
	AmountIn     *big.Int
	AmountOut    *big.Int
	MinAmountOut *big.Int
	PlatformFee  *big.Int
	Slippage     decimal.Decimal

	ExecutionPrice decimal.Decimal
	CurrentPrice   decimal.Decimal
	PriceImpact    decimal.Decimal

	FeePerHop []*big.Int
	Route     *Route
	AllTrade  bool
}

// RoutedAmount is the input that enters the first hop.
func (q *Quote) RoutedAmount() *big.Int {
	return new(big.Int).Sub(q.AmountIn, q.PlatformFee)
}

// FeeRate is the combined pool fee as a fraction of the routed input:
// 1 - prod(1 - fee_i / in_i).
func (q *Quote) FeeRate() decimal.Decimal {
	one := decimal.NewFromInt(1)
	kept := one
	for _, h := range q.Route.Hops {
		if h.AmountIn.Sign() == 0 {
			continue
		}
		rate := decimal.NewFromBigInt(h.Fee, 0).DivRound(decimal.NewFromBigInt(h.AmountIn, 0), 18)
		kept = kept.Mul(one.Sub(rate))
	}
	return one.Sub(kept)
}

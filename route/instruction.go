package route

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/amm"
	"github.com/krazyTry/raydium-go/clmm"
	"github.com/krazyTry/raydium-go/shared"
	solanago "github.com/krazyTry/raydium-go/solana"
)

// BuildSwapInstructions builds one swap instruction per hop of q, signed by
// owner. Token accounts come from resolver, whose create, wrap and close
// instructions surround the swaps.
//
// The first hop spends the routed amount. Each later hop spends the minimum
// output of the hop before it, so the route cannot fail for want of input;
// the last hop enforces the quote's MinAmountOut.
func BuildSwapInstructions(q *Quote, owner solana.PublicKey, resolver *solanago.Resolver) ([]solana.Instruction, error) {
	if q == nil || q.Route == nil || len(q.Route.Hops) == 0 {
		return nil, fmt.Errorf("%w: empty quote", shared.ErrNoRouteFound)
	}

	var (
		swaps  = make([]solana.Instruction, 0, len(q.Route.Hops))
		amount = q.RoutedAmount()
		last   = len(q.Route.Hops) - 1
	)
	for i, hop := range q.Route.Hops {
		inProgram, err := tokenProgram(hop.pool, hop.InputMint)
		if err != nil {
			return nil, err
		}
		outProgram, err := tokenProgram(hop.pool, hop.OutputMint)
		if err != nil {
			return nil, err
		}

		wrap := uint64(0)
		if i == 0 && hop.InputMint.Equals(solana.WrappedSol) {
			if !amount.IsUint64() {
				return nil, fmt.Errorf("%w: amount %s exceeds u64", shared.ErrRange, amount)
			}
			wrap = amount.Uint64()
		}
		in, err := resolver.Resolve(hop.InputMint, inProgram, wrap)
		if err != nil {
			return nil, err
		}
		out, err := resolver.Resolve(hop.OutputMint, outProgram, 0)
		if err != nil {
			return nil, err
		}

		minOut := hop.MinAmountOut
		if i == last {
			minOut = q.MinAmountOut
		}

		ix, err := buildHop(hop, owner, in.Address, out.Address, amount, minOut)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop.PoolID, err)
		}
		swaps = append(swaps, ix)
		amount = hop.MinAmountOut
	}
	return resolver.Wrap(swaps...), nil
}

func buildHop(hop *Hop, owner, tokenIn, tokenOut solana.PublicKey, amount, minOut *big.Int) (solana.Instruction, error) {
	switch pool := hop.pool.(type) {
	case *ConcentratedPool:
		return clmm.BuildSwapV2Instruction(&clmm.SwapParams{
			Pool:                 pool.Pool,
			Payer:                owner,
			InputTokenAccount:    tokenIn,
			OutputTokenAccount:   tokenOut,
			InputMint:            hop.InputMint,
			Amount:               amount,
			OtherAmountThreshold: minOut,
			SqrtPriceLimitX64:    hop.sqrtPriceLimitX64,
			IsBaseInput:          true,
			TickArrays:           hop.tickArrays,
		})
	case *LegacyPool:
		if pool.Market == nil {
			return nil, fmt.Errorf("%w: market %s not loaded", shared.ErrPoolNotFound, pool.Pool.Info.MarketID)
		}
		return amm.BuildSwapInstruction(&amm.SwapParams{
			Pool:        pool.Pool,
			Market:      pool.Market,
			Owner:       owner,
			TokenIn:     tokenIn,
			TokenOut:    tokenOut,
			FixedIn:     true,
			Amount:      amount,
			OtherAmount: minOut,
		})
	}
	return nil, fmt.Errorf("%w: unsupported pool %T", shared.ErrPoolNotFound, hop.pool)
}

package route

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/amm"
	"github.com/krazyTry/raydium-go/clmm"
	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/shared"
)

// Pool is a pool the engine can route through. It is implemented by
// *ConcentratedPool and *LegacyPool only.
type Pool interface {
	ID() solana.PublicKey
	Mints() (solana.PublicKey, solana.PublicKey)
	// Kind names the pricing curve.
	Kind() string

	quote(inputMint solana.PublicKey, amountIn *big.Int, slippage decimal.Decimal) (*Hop, error)
}

// ConcentratedPool routes through a CLMM pool and its loaded tick arrays.
type ConcentratedPool struct {
	Pool  *clmm.Pool
	Store *tick.Store
}

// NewConcentratedPool pairs pool with the tick arrays in store.
func NewConcentratedPool(pool *clmm.Pool, store *tick.Store) *ConcentratedPool {
	return &ConcentratedPool{Pool: pool, Store: store}
}

func (p *ConcentratedPool) ID() solana.PublicKey { return p.Pool.ID }

func (p *ConcentratedPool) Mints() (solana.PublicKey, solana.PublicKey) {
	return p.Pool.MintA.Address, p.Pool.MintB.Address
}

func (p *ConcentratedPool) Kind() string { return "clmm" }

func (p *ConcentratedPool) quote(inputMint solana.PublicKey, amountIn *big.Int, slippage decimal.Decimal) (*Hop, error) {
	res, err := clmm.ComputeAmountOut(p.Pool, p.Store, inputMint, amountIn, slippage, decimal.Zero)
	if err != nil {
		return nil, err
	}
	return &Hop{
		PoolID:            p.Pool.ID,
		Kind:              p.Kind(),
		InputMint:         inputMint,
		OutputMint:        otherMint(p, inputMint),
		AmountIn:          res.AmountIn,
		AmountOut:         res.AmountOut,
		MinAmountOut:      res.MinAmountOut,
		Fee:               res.Fee,
		CurrentPrice:      res.CurrentPrice,
		ExecutionPrice:    res.ExecutionPrice,
		PriceImpact:       res.PriceImpact,
		RemainingAccounts: res.RemainingAccounts,
		AllTrade:          res.AllTrade,
		pool:              p,
		tickArrays:        res.TickArrays,
		sqrtPriceLimitX64: res.SqrtPriceLimitX64,
	}, nil
}

// LegacyPool routes through a constant product or stable AMM pool. Market
// is only needed to build swap instructions.
type LegacyPool struct {
	Pool   *amm.Pool
	Market *amm.MarketStateV3
}

// NewLegacyPool pairs pool with its order book market, which may be nil
// when only quotes are needed.
func NewLegacyPool(pool *amm.Pool, market *amm.MarketStateV3) *LegacyPool {
	return &LegacyPool{Pool: pool, Market: market}
}

func (p *LegacyPool) ID() solana.PublicKey { return p.Pool.ID }

func (p *LegacyPool) Mints() (solana.PublicKey, solana.PublicKey) {
	return p.Pool.BaseMint, p.Pool.QuoteMint
}

func (p *LegacyPool) Kind() string { return p.Pool.Curve.String() }

func (p *LegacyPool) quote(inputMint solana.PublicKey, amountIn *big.Int, slippage decimal.Decimal) (*Hop, error) {
	res, err := amm.ComputeAmountOut(p.Pool, inputMint, amountIn, slippage)
	if err != nil {
		return nil, err
	}
	return &Hop{
		PoolID:         p.Pool.ID,
		Kind:           p.Kind(),
		InputMint:      inputMint,
		OutputMint:     otherMint(p, inputMint),
		AmountIn:       res.AmountIn,
		AmountOut:      res.AmountOut,
		MinAmountOut:   res.MinAmountOut,
		Fee:            res.Fee,
		CurrentPrice:   res.CurrentPrice,
		ExecutionPrice: res.ExecutionPrice,
		PriceImpact:    res.PriceImpact,
		AllTrade:       true,
		pool:           p,
	}, nil
}

func hasMint(p Pool, mint solana.PublicKey) bool {
	a, b := p.Mints()
	return a.Equals(mint) || b.Equals(mint)
}

// otherMint returns the side of p that is not mint.
func otherMint(p Pool, mint solana.PublicKey) solana.PublicKey {
	a, b := p.Mints()
	if a.Equals(mint) {
		return b
	}
	return a
}

func tokenProgram(p Pool, mint solana.PublicKey) (solana.PublicKey, error) {
	switch pool := p.(type) {
	case *ConcentratedPool:
		switch {
		case pool.Pool.MintA.Address.Equals(mint):
			return pool.Pool.MintA.ProgramID, nil
		case pool.Pool.MintB.Address.Equals(mint):
			return pool.Pool.MintB.ProgramID, nil
		}
	case *LegacyPool:
		if pool.Pool.HasMint(mint) {
			return solana.TokenProgramID, nil
		}
	}
	return solana.PublicKey{}, fmt.Errorf("%w: %s is not a mint of pool %s", shared.ErrTokenNotFound, mint, p.ID())
}

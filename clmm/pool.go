package clmm

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/u128"
)

// MintInfo describes one side of a pool.
type MintInfo struct {
	Address   solana.PublicKey
	Decimals  uint8
	ProgramID solana.PublicKey
}

// Pool is a concentrated liquidity pool decoded from its PoolState and
// AmmConfig accounts. It is never mutated after construction.
type Pool struct {
	ID             solana.PublicKey
	ProgramID      solana.PublicKey
	AmmConfig      solana.PublicKey
	MintA          MintInfo
	MintB          MintInfo
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	ObservationKey solana.PublicKey

	TickSpacing  int32
	SqrtPriceX64 *big.Int
	TickCurrent  int32
	Liquidity    *big.Int

	TradeFeeRate    uint32
	ProtocolFeeRate uint32
	FundFeeRate     uint32

	RewardInfos     []RewardInfo
	TickArrayBitmap tick.Bitmap
	BitmapExtension *tick.ExtensionBitmap

	Status   uint8
	OpenTime uint64
}

// NewPool validates state and builds a Pool. ext may be nil when the pool
// has no bitmap extension account.
func NewPool(id solana.PublicKey, state *PoolStateLayout, config *AmmConfigLayout, ext *TickArrayBitmapExtensionLayout) (*Pool, error) {
	if state == nil || config == nil {
		return nil, fmt.Errorf("%w: pool %s needs both PoolState and AmmConfig", shared.ErrPoolNotFound, id)
	}
	sqrtPriceX64 := u128.ToBig(state.SqrtPriceX64)
	if sqrtPriceX64.Cmp(clmmmath.MinSqrtPriceX64) <= 0 || sqrtPriceX64.Cmp(clmmmath.MaxSqrtPriceX64) >= 0 {
		return nil, fmt.Errorf("%w: pool %s sqrt price %s", shared.ErrRange, id, sqrtPriceX64)
	}
	if state.TickSpacing == 0 {
		return nil, fmt.Errorf("%w: pool %s tick spacing is zero", shared.ErrRange, id)
	}
	if config.TradeFeeRate >= shared.FeeRateDenominator {
		return nil, fmt.Errorf("%w: pool %s trade fee rate %d", shared.ErrRange, id, config.TradeFeeRate)
	}

	pool := &Pool{
		ID:        id,
		ProgramID: ProgramID,
		AmmConfig: state.AmmConfig,
		MintA: MintInfo{
			Address:   state.TokenMint0,
			Decimals:  state.MintDecimals0,
			ProgramID: solana.TokenProgramID,
		},
		MintB: MintInfo{
			Address:   state.TokenMint1,
			Decimals:  state.MintDecimals1,
			ProgramID: solana.TokenProgramID,
		},
		VaultA:          state.TokenVault0,
		VaultB:          state.TokenVault1,
		ObservationKey:  state.ObservationKey,
		TickSpacing:     int32(state.TickSpacing),
		SqrtPriceX64:    sqrtPriceX64,
		TickCurrent:     state.TickCurrent,
		Liquidity:       u128.ToBig(state.Liquidity),
		TradeFeeRate:    config.TradeFeeRate,
		ProtocolFeeRate: config.ProtocolFeeRate,
		FundFeeRate:     config.FundFeeRate,
		RewardInfos:     state.RewardInfos[:],
		TickArrayBitmap: tick.Bitmap(state.TickArrayBitmap),
		Status:          state.Status,
		OpenTime:        state.OpenTime,
	}
	if ext != nil {
		pool.BitmapExtension = ext.Bitmap()
	}
	return pool, nil
}

// WithMintPrograms returns a copy of p whose mints are owned by the given
// token programs, as learned from the mint accounts.
func (p *Pool) WithMintPrograms(programA, programB solana.PublicKey) *Pool {
	out := *p
	out.MintA.ProgramID = programA
	out.MintB.ProgramID = programB
	return &out
}

// CurrentPrice is the price of token A in token B.
func (p *Pool) CurrentPrice() decimal.Decimal {
	return clmmmath.SqrtPriceX64ToPrice(p.SqrtPriceX64, int32(p.MintA.Decimals), int32(p.MintB.Decimals))
}

// HasMint reports whether mint is one side of the pool.
func (p *Pool) HasMint(mint solana.PublicKey) bool {
	return p.MintA.Address.Equals(mint) || p.MintB.Address.Equals(mint)
}

// NewStore indexes pages against the pool's bitmaps.
func (p *Pool) NewStore(pages ...*tick.Page) (*tick.Store, error) {
	return tick.NewStore(p.TickSpacing, p.TickArrayBitmap, p.BitmapExtension, pages...)
}

// PagesToFetch lists the tick-array PDAs a fetcher should load to quote
// swaps of moderate size in either direction.
func (p *Pool) PagesToFetch(count int) ([]solana.PublicKey, []int32, error) {
	store, err := p.NewStore()
	if err != nil {
		return nil, nil, err
	}
	starts := store.PagesAround(p.TickCurrent, count)
	keys := make([]solana.PublicKey, 0, len(starts))
	for _, start := range starts {
		key, err := DeriveTickArrayAddress(p.ProgramID, p.ID, start)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
	}
	return keys, starts, nil
}

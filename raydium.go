package raydium

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/raydium-go/amm"
	"github.com/krazyTry/raydium-go/amm/stable"
	"github.com/krazyTry/raydium-go/clmm"
	"github.com/krazyTry/raydium-go/clmm/tick"
	"github.com/krazyTry/raydium-go/fetch"
	"github.com/krazyTry/raydium-go/route"
	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/snapshot"
	solanago "github.com/krazyTry/raydium-go/solana"
)

// ParsePoolList reads a Raydium pool list.
//
// Example:
//
// pools, _ := ParsePoolList(data, clmm.ProgramID)
//
// client.Quote(ctx, pools, &route.Request{InputMint: sol, OutputMint: usdc, AmountIn: amount, Slippage: slippage})
var ParsePoolList = snapshot.ParsePoolList

// DefaultTickArrayCount is how many tick arrays are loaded on each side of
// the current tick of a concentrated pool.
const DefaultTickArrayCount = 3

// Client quotes and builds swaps over Raydium pools. Without a fetcher it
// works on caller supplied snapshots only.
type Client struct {
	fetcher        *fetch.Fetcher
	engine         *route.Engine
	logger         *zap.Logger
	tickArrayCount int
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithFetcher(fetcher *fetch.Fetcher) Option {
	return func(c *Client) {
		c.fetcher = fetcher
	}
}

func WithEngine(engine *route.Engine) Option {
	return func(c *Client) {
		if engine != nil {
			c.engine = engine
		}
	}
}

func WithTickArrayCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.tickArrayCount = n
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{logger: zap.NewNop(), tickArrayCount: DefaultTickArrayCount}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = route.NewEngine(route.WithLogger(c.logger))
	}
	return c
}

// PoolKeys lists the accounts needed before pool state can be decoded: the
// pool accounts, legacy vaults and markets, the stable model, and the mints
// and bitmap extensions of concentrated pools.
func PoolKeys(pools []*snapshot.PoolInfo) ([]solana.PublicKey, error) {
	var keys []solana.PublicKey
	for _, info := range pools {
		keys = append(keys, info.ID)
		switch info.Version {
		case shared.PoolVersionV4, shared.PoolVersionV5:
			keys = append(keys, info.BaseVault, info.QuoteVault, info.MarketID)
			if info.Version == shared.PoolVersionV5 {
				keys = append(keys, stable.ModelDataPubkey)
			}
		case shared.PoolVersionClmm:
			ext, err := clmm.DeriveBitmapExtensionAddress(info.ProgramID, info.ID)
			if err != nil {
				return nil, err
			}
			keys = append(keys, info.BaseMint, info.QuoteMint, ext)
			if !info.AmmConfig.Equals(solana.PublicKey{}) {
				keys = append(keys, info.AmmConfig)
			}
		default:
			return nil, fmt.Errorf("%w: pool %s version %d", shared.ErrInvalidVersion, info.ID, info.Version)
		}
	}
	return keys, nil
}

// DependentKeys lists the accounts that can only be named once the pool
// accounts are in snap: the tick arrays around the current tick of every
// concentrated pool, and AmmConfig accounts the pool list left out.
func (c *Client) DependentKeys(snap *snapshot.Snapshot, pools []*snapshot.PoolInfo) ([]solana.PublicKey, error) {
	var keys []solana.PublicKey
	for _, info := range pools {
		if info.Version != shared.PoolVersionClmm {
			continue
		}
		data, err := snap.Data(info.ID)
		if err != nil {
			return nil, err
		}
		state, err := clmm.DecodePoolState(data)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", info.ID, err)
		}
		if _, ok := snap.Get(state.AmmConfig); !ok {
			keys = append(keys, state.AmmConfig)
		}
		ext, err := bitmapExtension(snap, info)
		if err != nil {
			return nil, err
		}
		// Tick array addresses do not depend on fees.
		pool, err := clmm.NewPool(info.ID, state, &clmm.AmmConfigLayout{}, ext)
		if err != nil {
			return nil, err
		}
		pages, _, err := pool.PagesToFetch(c.tickArrayCount)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pages...)
	}
	return keys, nil
}

// Load fetches every account the pools need in two rounds.
func (c *Client) Load(ctx context.Context, pools []*snapshot.PoolInfo) (*snapshot.Snapshot, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("client has no fetcher")
	}
	keys, err := PoolKeys(pools)
	if err != nil {
		return nil, err
	}
	snap, err := c.fetcher.Accounts(ctx, keys)
	if err != nil {
		return nil, err
	}
	more, err := c.DependentKeys(snap, pools)
	if err != nil {
		return nil, err
	}
	if len(more) == 0 {
		return snap, nil
	}
	rest, err := c.fetcher.Accounts(ctx, more)
	if err != nil {
		return nil, err
	}
	return snap.Merge(rest), nil
}

// Pools decodes every pool in pools from snap. Pools whose accounts are
// missing or malformed are logged and skipped.
func (c *Client) Pools(snap *snapshot.Snapshot, pools []*snapshot.PoolInfo) ([]route.Pool, error) {
	var (
		out   = make([]route.Pool, 0, len(pools))
		model *stable.Model
	)
	for _, info := range pools {
		var (
			p   route.Pool
			err error
		)
		switch info.Version {
		case shared.PoolVersionV4, shared.PoolVersionV5:
			if info.Version == shared.PoolVersionV5 && model == nil {
				if model, err = stableModel(snap); err != nil {
					c.logger.Warn("pool skipped", zap.Stringer("pool", info.ID), zap.Error(err))
					continue
				}
			}
			p, err = legacyPool(snap, info, model)
		case shared.PoolVersionClmm:
			p, err = concentratedPool(snap, info, c.tickArrayCount)
		default:
			err = fmt.Errorf("%w: version %d", shared.ErrInvalidVersion, info.Version)
		}
		if err != nil {
			c.logger.Warn("pool skipped", zap.Stringer("pool", info.ID), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 && len(pools) > 0 {
		return nil, fmt.Errorf("%w: none of %d pools could be decoded", shared.ErrPoolNotFound, len(pools))
	}
	c.logger.Debug("pools decoded", zap.Int("requested", len(pools)), zap.Int("decoded", len(out)), zap.Uint64("slot", snap.Slot))
	return out, nil
}

// Routes prices every fillable route for req over the pools decoded from
// snap, best first.
func (c *Client) Routes(snap *snapshot.Snapshot, pools []*snapshot.PoolInfo, req *route.Request) ([]*route.Quote, error) {
	decoded, err := c.Pools(snap, pools)
	if err != nil {
		return nil, err
	}
	return c.engine.Quotes(req, decoded)
}

// QuoteSnapshot routes req over the pools decoded from snap.
func (c *Client) QuoteSnapshot(snap *snapshot.Snapshot, pools []*snapshot.PoolInfo, req *route.Request) (*route.Quote, error) {
	decoded, err := c.Pools(snap, pools)
	if err != nil {
		return nil, err
	}
	return c.engine.Best(req, decoded)
}

// Quote loads the pools and routes req over them.
func (c *Client) Quote(ctx context.Context, pools []*snapshot.PoolInfo, req *route.Request) (*route.Quote, *snapshot.Snapshot, error) {
	snap, err := c.Load(ctx, pools)
	if err != nil {
		return nil, nil, err
	}
	q, err := c.QuoteSnapshot(snap, pools, req)
	if err != nil {
		return nil, nil, err
	}
	return q, snap, nil
}

// BuildSwap builds the instructions for q. Token accounts of owner found in
// snap are reused; the rest are created.
func (c *Client) BuildSwap(q *route.Quote, owner solana.PublicKey, snap *snapshot.Snapshot) ([]solana.Instruction, error) {
	return route.BuildSwapInstructions(q, owner, solanago.NewResolver(owner, owner, snap))
}

func stableModel(snap *snapshot.Snapshot) (*stable.Model, error) {
	data, err := snap.Data(stable.ModelDataPubkey)
	if err != nil {
		return nil, err
	}
	return stable.DecodeModel(data)
}

func legacyPool(snap *snapshot.Snapshot, info *snapshot.PoolInfo, model *stable.Model) (*route.LegacyPool, error) {
	data, err := snap.Data(info.ID)
	if err != nil {
		return nil, err
	}
	state, err := amm.DecodeLiquidityState(info.Version, data)
	if err != nil {
		return nil, err
	}
	base, ok := snap.TokenAccount(state.Info().BaseVault)
	if !ok {
		return nil, fmt.Errorf("%w: base vault %s", shared.ErrPoolNotFound, state.Info().BaseVault)
	}
	quote, ok := snap.TokenAccount(state.Info().QuoteVault)
	if !ok {
		return nil, fmt.Errorf("%w: quote vault %s", shared.ErrPoolNotFound, state.Info().QuoteVault)
	}
	pool, err := amm.NewPool(info.ID, state, base, quote, model)
	if err != nil {
		return nil, err
	}

	// The market is only needed for swap instructions.
	var market *amm.MarketStateV3
	if data, err := snap.Data(pool.Info.MarketID); err == nil {
		if market, err = amm.DecodeMarketState(data); err != nil {
			return nil, fmt.Errorf("market %s: %w", pool.Info.MarketID, err)
		}
	}
	return route.NewLegacyPool(pool, market), nil
}

func bitmapExtension(snap *snapshot.Snapshot, info *snapshot.PoolInfo) (*clmm.TickArrayBitmapExtensionLayout, error) {
	key, err := clmm.DeriveBitmapExtensionAddress(info.ProgramID, info.ID)
	if err != nil {
		return nil, err
	}
	data, err := snap.Data(key)
	if err != nil {
		// Pools whose ticks never left the default bitmap have no extension.
		return nil, nil
	}
	return clmm.DecodeBitmapExtension(data)
}

func concentratedPool(snap *snapshot.Snapshot, info *snapshot.PoolInfo, tickArrayCount int) (*route.ConcentratedPool, error) {
	data, err := snap.Data(info.ID)
	if err != nil {
		return nil, err
	}
	state, err := clmm.DecodePoolState(data)
	if err != nil {
		return nil, err
	}
	data, err = snap.Data(state.AmmConfig)
	if err != nil {
		return nil, err
	}
	config, err := clmm.DecodeAmmConfig(data)
	if err != nil {
		return nil, err
	}
	ext, err := bitmapExtension(snap, info)
	if err != nil {
		return nil, err
	}
	pool, err := clmm.NewPool(info.ID, state, config, ext)
	if err != nil {
		return nil, err
	}
	pool = pool.WithMintPrograms(mintProgram(snap, pool.MintA.Address), mintProgram(snap, pool.MintB.Address))

	keys, _, err := pool.PagesToFetch(tickArrayCount)
	if err != nil {
		return nil, err
	}
	pages := make([]*tick.Page, 0, len(keys))
	for _, key := range keys {
		data, err := snap.Data(key)
		if err != nil {
			continue
		}
		raw, err := clmm.DecodeTickArray(data)
		if err != nil {
			return nil, fmt.Errorf("tick array %s: %w", key, err)
		}
		pages = append(pages, raw.Page())
	}
	store, err := pool.NewStore(pages...)
	if err != nil {
		return nil, err
	}
	return route.NewConcentratedPool(pool, store), nil
}

// mintProgram is the token program owning mint, defaulting to SPL Token
// when the mint was not loaded.
func mintProgram(snap *snapshot.Snapshot, mint solana.PublicKey) solana.PublicKey {
	if acc, ok := snap.Get(mint); ok {
		return acc.Owner
	}
	return solana.TokenProgramID
}

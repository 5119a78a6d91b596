package raydium

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/amm"
	"github.com/krazyTry/raydium-go/clmm"
	"github.com/krazyTry/raydium-go/fetch"
	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/route"
	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/snapshot"
	solanago "github.com/krazyTry/raydium-go/solana"
)

func key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

var (
	poolID     = key(1)
	baseMint   = key(2)
	quoteMint  = key(3)
	baseVault  = key(4)
	quoteVault = key(5)
	marketID   = key(6)
	owner      = key(0x77)
)

func tokenAccount(t *testing.T, mint, holder solana.PublicKey, amount uint64) *snapshot.Account {
	t.Helper()
	data, err := solanago.EncodeTokenAccount(&solanago.Account{Mint: mint, Owner: holder, Amount: amount, IsInitialized: true})
	require.NoError(t, err)
	return &snapshot.Account{Owner: solana.TokenProgramID, Lamports: 2_039_280, Data: data}
}

// fixture is a v4 pool with 1e9/1e9 reserves at 0.25% and its market.
func fixture(t *testing.T) (*snapshot.Snapshot, []*snapshot.PoolInfo) {
	t.Helper()
	state := &amm.LiquidityStateV4{
		Status:       6,
		Nonce:        254,
		BaseDecimal:  6,
		QuoteDecimal: 6,
		Fees: amm.Fees{
			SwapFeeNumerator:    amm.LiquidityFeesNumerator,
			SwapFeeDenominator:  amm.LiquidityFeesDenominator,
			TradeFeeNumerator:   25,
			TradeFeeDenominator: 10_000,
		},
		BaseVault:       baseVault,
		QuoteVault:      quoteVault,
		BaseMint:        baseMint,
		QuoteMint:       quoteMint,
		OpenOrders:      key(10),
		MarketID:        marketID,
		MarketProgramID: amm.SerumProgramIDV3,
		TargetOrders:    key(11),
	}
	poolData, err := layout.Encode(state)
	require.NoError(t, err)

	_, nonce, err := amm.FindVaultSigner(marketID, amm.SerumProgramIDV3)
	require.NoError(t, err)
	marketData, err := layout.Encode(&amm.MarketStateV3{
		OwnAddress:       marketID,
		VaultSignerNonce: nonce,
		BaseMint:         baseMint,
		QuoteMint:        quoteMint,
		BaseVault:        key(20),
		QuoteVault:       key(21),
		EventQueue:       key(22),
		Bids:             key(23),
		Asks:             key(24),
	})
	require.NoError(t, err)

	snap := snapshot.New(99, map[solana.PublicKey]*snapshot.Account{
		poolID:     {Owner: amm.ProgramIDV4, Data: poolData},
		baseVault:  tokenAccount(t, baseMint, key(9), 1_000_000_000),
		quoteVault: tokenAccount(t, quoteMint, key(9), 1_000_000_000),
		marketID:   {Owner: amm.SerumProgramIDV3, Data: marketData},
	})
	infos := []*snapshot.PoolInfo{{
		ID:              poolID,
		ProgramID:       amm.ProgramIDV4,
		Version:         shared.PoolVersionV4,
		BaseMint:        baseMint,
		QuoteMint:       quoteMint,
		BaseDecimals:    6,
		QuoteDecimals:   6,
		BaseVault:       baseVault,
		QuoteVault:      quoteVault,
		MarketID:        marketID,
		MarketProgramID: amm.SerumProgramIDV3,
	}}
	return snap, infos
}

func request() *route.Request {
	return &route.Request{InputMint: baseMint, OutputMint: quoteMint, AmountIn: big.NewInt(1_000_000), Slippage: decimal.RequireFromString("0.005")}
}

func TestPoolKeys(t *testing.T) {
	_, infos := fixture(t)
	clmmInfo := &snapshot.PoolInfo{ID: key(30), ProgramID: clmm.ProgramID, Version: shared.PoolVersionClmm, BaseMint: key(31), QuoteMint: key(32), AmmConfig: key(33)}

	keys, err := PoolKeys(append(infos, clmmInfo))
	require.NoError(t, err)

	ext, err := clmm.DeriveBitmapExtensionAddress(clmm.ProgramID, key(30))
	require.NoError(t, err)
	require.Equal(t, []solana.PublicKey{poolID, baseVault, quoteVault, marketID, key(30), key(31), key(32), ext, key(33)}, keys)

	_, err = PoolKeys([]*snapshot.PoolInfo{{ID: key(40), Version: 9}})
	require.ErrorIs(t, err, shared.ErrInvalidVersion)
}

func TestQuoteSnapshot(t *testing.T) {
	snap, infos := fixture(t)
	// A pool whose accounts are absent is skipped.
	infos = append(infos, &snapshot.PoolInfo{ID: key(30), ProgramID: clmm.ProgramID, Version: shared.PoolVersionClmm, BaseMint: baseMint, QuoteMint: quoteMint})

	c := NewClient()
	pools, err := c.Pools(snap, infos)
	require.NoError(t, err)
	require.Len(t, pools, 1)

	q, err := c.QuoteSnapshot(snap, infos, request())
	require.NoError(t, err)

	want, _, err := amm.GetAmountOut(big.NewInt(1_000_000), big.NewInt(1_000_000_000), big.NewInt(1_000_000_000), 25, 10_000)
	require.NoError(t, err)
	require.Equal(t, 0, want.Cmp(q.AmountOut))
	require.Equal(t, 0, q.MinAmountOut.Cmp(shared.MinAmountWithSlippage(want, q.Slippage)))

	_, err = c.Pools(snapshot.New(0, nil), infos[:1])
	require.ErrorIs(t, err, shared.ErrPoolNotFound)
}

func TestBuildSwapReusesExistingAccounts(t *testing.T) {
	snap, infos := fixture(t)
	c := NewClient()
	q, err := c.QuoteSnapshot(snap, infos, request())
	require.NoError(t, err)

	in, err := solanago.FindAssociatedTokenAddress(owner, baseMint, solana.TokenProgramID)
	require.NoError(t, err)
	snap = snap.Merge(snapshot.New(0, map[solana.PublicKey]*snapshot.Account{in: tokenAccount(t, baseMint, owner, 5_000_000)}))

	ixs, err := c.BuildSwap(q, owner, snap)
	require.NoError(t, err)
	// only the output account is created
	require.Len(t, ixs, 2)
	require.Equal(t, solana.SPLAssociatedTokenAccountProgramID, ixs[0].ProgramID())
	require.Equal(t, amm.ProgramIDV4, ixs[1].ProgramID())
	require.Equal(t, in, ixs[1].Accounts()[15].PublicKey)
}

type snapshotRPC struct {
	snap  *snapshot.Snapshot
	calls int
}

func (r *snapshotRPC) GetMultipleAccountsWithOpts(_ context.Context, keys []solana.PublicKey, _ *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error) {
	r.calls++
	res := &rpc.GetMultipleAccountsResult{Value: make([]*rpc.Account, len(keys))}
	res.Context.Slot = r.snap.Slot
	for i, k := range keys {
		if acc, ok := r.snap.Get(k); ok {
			res.Value[i] = &rpc.Account{Owner: acc.Owner, Lamports: acc.Lamports, Data: rpc.DataBytesOrJSONFromBytes(acc.Data)}
		}
	}
	return res, nil
}

func (r *snapshotRPC) GetProgramAccountsWithOpts(context.Context, solana.PublicKey, *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	return nil, nil
}

func TestQuoteLoadsAccounts(t *testing.T) {
	chain, infos := fixture(t)
	client := &snapshotRPC{snap: chain}
	c := NewClient(WithFetcher(fetch.New(client, fetch.WithRate(0))))

	q, snap, err := c.Quote(context.Background(), infos, request())
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)
	require.Equal(t, uint64(99), snap.Slot)
	require.Equal(t, chain.Len(), snap.Len())
	require.Equal(t, poolID, q.Route.Hops[0].PoolID)

	_, err = NewClient().Load(context.Background(), infos)
	require.Error(t, err)
}

package amm

import (
	"bytes"
	"math/big"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/amm/stable"
	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
	solanago "github.com/krazyTry/raydium-go/solana"
)

func key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

var (
	testPoolID    = key(1)
	testBaseMint  = key(2)
	testQuoteMint = key(3)
	testBaseVault = key(4)
	testQuoteVlt  = key(5)
	testMarketID  = key(6)
)

func testFees() Fees {
	return Fees{SwapFeeNumerator: LiquidityFeesNumerator, SwapFeeDenominator: LiquidityFeesDenominator, TradeFeeNumerator: 25, TradeFeeDenominator: 10_000}
}

func vault(t *testing.T, address, mint solana.PublicKey, amount uint64) *solanago.Account {
	t.Helper()
	data, err := solanago.EncodeTokenAccount(&solanago.Account{Mint: mint, Owner: key(9), Amount: amount, IsInitialized: true})
	require.NoError(t, err)
	require.Len(t, data, solanago.TokenAccountSize)
	account, err := solanago.DecodeTokenAccount(address, data)
	require.NoError(t, err)
	return account
}

// v4Pool decodes a constant product pool from encoded accounts.
func v4Pool(t *testing.T, base, quote, basePnl uint64) *Pool {
	t.Helper()
	state := &LiquidityStateV4{
		Status:          6,
		Nonce:           254,
		BaseDecimal:     6,
		QuoteDecimal:    6,
		Fees:            testFees(),
		BaseNeedTakePnl: basePnl,
		BaseVault:       testBaseVault,
		QuoteVault:      testQuoteVlt,
		BaseMint:        testBaseMint,
		QuoteMint:       testQuoteMint,
		OpenOrders:      key(10),
		MarketID:        testMarketID,
		MarketProgramID: SerumProgramIDV3,
		TargetOrders:    key(11),
		LpReserve:       1_000,
	}
	data, err := layout.Encode(state)
	require.NoError(t, err)
	decoded, err := DecodeLiquidityState(shared.PoolVersionV4, data)
	require.NoError(t, err)

	pool, err := NewPool(testPoolID, decoded, vault(t, testBaseVault, testBaseMint, base), vault(t, testQuoteVlt, testQuoteMint, quote), nil)
	require.NoError(t, err)
	return pool
}

func TestLayoutSizes(t *testing.T) {
	for _, s := range []layout.Schema{&LiquidityStateV4{}, &LiquidityStateV5{}, &MarketStateV3{}} {
		data, err := layout.Encode(s)
		require.NoError(t, err)
		require.Len(t, data, s.Span())
	}
	require.Equal(t, 752, (&LiquidityStateV4{}).Span())
	require.Equal(t, 1232, (&LiquidityStateV5{}).Span())
	require.Equal(t, 388, (&MarketStateV3{}).Span())
}

func TestLiquidityStateRoundTrip(t *testing.T) {
	v5 := &LiquidityStateV5{
		AccountType:      1,
		Status:           1,
		BaseDecimal:      6,
		QuoteDecimal:     9,
		Fees:             testFees(),
		QuoteNeedTakePnl: 77,
		SwapBaseInAmount: binaryU128(12345),
		BaseVault:        testBaseVault,
		QuoteVault:       testQuoteVlt,
		ModelDataAccount: stable.ModelDataPubkey,
		Owner:            key(12),
	}
	data, err := layout.Encode(v5)
	require.NoError(t, err)
	decoded, err := DecodeLiquidityState(shared.PoolVersionV5, data)
	require.NoError(t, err)
	require.Equal(t, v5, decoded)
	require.Equal(t, uint64(77), decoded.Info().QuoteNeedTakePnl)
	require.Equal(t, stable.ModelDataPubkey, decoded.Info().ModelDataAccount)

	_, err = DecodeLiquidityState(shared.PoolVersionV4, data[:700])
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
	_, err = DecodeLiquidityState(shared.PoolVersionClmm, data)
	require.ErrorIs(t, err, shared.ErrInvalidVersion)
}

func TestMarketStateRoundTrip(t *testing.T) {
	market := &MarketStateV3{
		AccountFlags:     3,
		OwnAddress:       testMarketID,
		VaultSignerNonce: 2,
		BaseMint:         testBaseMint,
		QuoteMint:        testQuoteMint,
		Bids:             key(20),
		Asks:             key(21),
		EventQueue:       key(22),
		BaseLotSize:      100,
		FeeRateBps:       22,
	}
	data, err := layout.Encode(market)
	require.NoError(t, err)
	require.Equal(t, []byte("serum"), data[:5])
	decoded, err := DecodeMarketState(data)
	require.NoError(t, err)
	require.Equal(t, market, decoded)
}

// Scenario C: 1,000,000 / 2,000,000 reserves, 10,000 in at 0.25%.
func TestComputeAmountOutConstantProduct(t *testing.T) {
	pool := v4Pool(t, 1_000_000, 2_000_000, 0)
	require.Equal(t, CurveConstantProduct, pool.Curve)

	amountIn := big.NewInt(10_000)
	res, err := ComputeAmountOut(pool, testBaseMint, amountIn, decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	fee := big.NewInt(25) // ceil(10000 * 25 / 10000)
	afterFee := new(big.Int).Sub(amountIn, fee)
	want := new(big.Int).Mul(big.NewInt(2_000_000), afterFee)
	want.Quo(want, new(big.Int).Add(big.NewInt(1_000_000), afterFee))

	require.Equal(t, 0, res.Fee.Cmp(fee))
	require.Equal(t, 0, res.AmountOut.Cmp(want))
	require.Equal(t, int64(19_752), res.AmountOut.Int64())
	require.Equal(t, int64(19_554), res.MinAmountOut.Int64())
	require.True(t, res.CurrentPrice.Equal(decimal.NewFromInt(2)))
	require.True(t, res.ExecutionPrice.Equal(decimal.RequireFromString("1.9752")))
	require.True(t, res.PriceImpact.Equal(decimal.RequireFromString("0.0124")), res.PriceImpact.String())

	// The alternative closed form agrees.
	k := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(2_000_000))
	alt := new(big.Int).Sub(big.NewInt(2_000_000), ceilDiv(k, new(big.Int).Add(big.NewInt(1_000_000), afterFee)))
	require.Equal(t, 0, alt.Cmp(want))
}

func TestComputeAmountOutQuoteIn(t *testing.T) {
	pool := v4Pool(t, 1_000_000, 2_000_000, 0)
	res, err := ComputeAmountOut(pool, testQuoteMint, big.NewInt(20_000), decimal.Zero)
	require.NoError(t, err)
	require.True(t, res.CurrentPrice.Equal(decimal.RequireFromString("0.5")))
	require.Equal(t, 0, res.AmountOut.Cmp(res.MinAmountOut))
	require.Equal(t, int64(9_876), res.AmountOut.Int64())
}

func TestComputeAmountIn(t *testing.T) {
	pool := v4Pool(t, 1_000_000, 2_000_000, 0)
	res, err := ComputeAmountIn(pool, testBaseMint, big.NewInt(19_752), decimal.RequireFromString("0.01"))
	require.NoError(t, err)

	// Selling the quoted input must yield at least the requested output.
	out, err := ComputeAmountOut(pool, testBaseMint, res.AmountIn, decimal.Zero)
	require.NoError(t, err)
	require.True(t, out.AmountOut.Cmp(big.NewInt(19_752)) >= 0)
	require.True(t, res.AmountIn.Cmp(big.NewInt(10_000)) <= 0)
	require.True(t, res.MaxAmountIn.Cmp(res.AmountIn) > 0)

	_, err = ComputeAmountIn(pool, testBaseMint, big.NewInt(2_000_000), decimal.Zero)
	require.ErrorIs(t, err, shared.ErrInsufficientLiquidity)
	_, err = ComputeAmountIn(pool, key(99), big.NewInt(1), decimal.Zero)
	require.ErrorIs(t, err, shared.ErrTokenNotFound)
}

func TestReservesExcludePnl(t *testing.T) {
	pool := v4Pool(t, 1_000_500, 2_000_000, 500)
	require.Equal(t, int64(1_000_000), pool.BaseReserve.Int64())
	require.Equal(t, int64(1_000), pool.LpSupply.Int64())

	empty := v4Pool(t, 10, 2_000_000, 500)
	require.Equal(t, 0, empty.BaseReserve.Sign())
	_, err := ComputeAmountOut(empty, testBaseMint, big.NewInt(1), decimal.Zero)
	require.ErrorIs(t, err, shared.ErrInsufficientLiquidity)
}

func TestNewPoolValidation(t *testing.T) {
	state := &LiquidityStateV4{Fees: testFees(), BaseVault: testBaseVault, QuoteVault: testQuoteVlt}
	base := vault(t, testBaseVault, testBaseMint, 1)
	quote := vault(t, testQuoteVlt, testQuoteMint, 1)

	_, err := NewPool(testPoolID, state, base, nil, nil)
	require.ErrorIs(t, err, shared.ErrPoolNotFound)
	_, err = NewPool(testPoolID, state, quote, base, nil)
	require.ErrorIs(t, err, shared.ErrPoolNotFound)

	bad := *state
	bad.Fees.SwapFeeDenominator = 0
	_, err = NewPool(testPoolID, &bad, base, quote, nil)
	require.ErrorIs(t, err, shared.ErrRange)

	v5 := &LiquidityStateV5{Fees: testFees(), BaseVault: testBaseVault, QuoteVault: testQuoteVlt}
	_, err = NewPool(testPoolID, v5, base, quote, nil)
	require.ErrorIs(t, err, shared.ErrPoolNotFound)
}

// stableModel samples x*y = 4e18 in table units with multiplier 1e6.
func stableModel(t *testing.T) *stable.Model {
	t.Helper()
	raw := &stable.ModelDataLayout{Multiplier: 1_000_000, ValidDataCount: 2001}
	for i := 0; i < 2001; i++ {
		x := uint64(1_000_000_000 + i*1_000_000)
		y := uint64(4e18 / float64(x))
		raw.Elements = append(raw.Elements, stable.DataElement{X: x, Y: y, Price: uint64(1e6 * float64(x) / float64(y))})
	}
	model, err := stable.NewModel(raw)
	require.NoError(t, err)
	return model
}

func TestComputeAmountOutStable(t *testing.T) {
	v5 := &LiquidityStateV5{
		BaseDecimal:  6,
		QuoteDecimal: 6,
		Fees:         testFees(),
		BaseVault:    testBaseVault,
		QuoteVault:   testQuoteVlt,
		BaseMint:     testBaseMint,
		QuoteMint:    testQuoteMint,
	}
	// Reserves sit on the curve at x = y = 2e9.
	pool, err := NewPool(testPoolID, v5,
		vault(t, testBaseVault, testBaseMint, 2_000_000_000),
		vault(t, testQuoteVlt, testQuoteMint, 2_000_000_000),
		stableModel(t))
	require.NoError(t, err)
	require.Equal(t, CurveStable, pool.Curve)
	require.Equal(t, ProgramIDV5, pool.ProgramID)

	res, err := ComputeAmountOut(pool, testBaseMint, big.NewInt(50_000_000), decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	afterFee := 50_000_000.0 * (1 - 0.0025)
	want := 2e9 * afterFee / (2e9 + afterFee)
	require.InEpsilon(t, want, float64(res.AmountOut.Int64()), 2e-3)
	require.True(t, res.CurrentPrice.Sub(decimal.NewFromInt(1)).Abs().LessThan(decimal.RequireFromString("0.01")))

	in, err := ComputeAmountIn(pool, testQuoteMint, big.NewInt(10_000_000), decimal.Zero)
	require.NoError(t, err)
	require.InEpsilon(t, 10_000_000/(1-0.0025), float64(in.AmountIn.Int64()), 1e-2)
}

func TestBuildSwapInstruction(t *testing.T) {
	pool := v4Pool(t, 1_000_000, 2_000_000, 0)
	_, nonce, err := FindVaultSigner(testMarketID, SerumProgramIDV3)
	require.NoError(t, err)
	market := &MarketStateV3{VaultSignerNonce: nonce, Bids: key(20), Asks: key(21), EventQueue: key(22), BaseVault: key(23), QuoteVault: key(24)}

	params := &SwapParams{
		Pool:        pool,
		Market:      market,
		Owner:       key(30),
		TokenIn:     key(31),
		TokenOut:    key(32),
		FixedIn:     true,
		Amount:      big.NewInt(10_000),
		OtherAmount: big.NewInt(19_554),
	}
	ix, err := BuildSwapInstruction(params)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 18)
	require.Equal(t, pool.Info.TargetOrders, accounts[4].PublicKey)
	require.True(t, accounts[17].IsSigner)

	authority, _, err := AuthorityPDA(ProgramIDV4)
	require.NoError(t, err)
	require.Equal(t, authority, accounts[2].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, byte(9), data[0])
	v, err := DecodeInstruction(data)
	require.NoError(t, err)
	require.Equal(t, &SwapBaseInArgs{AmountIn: 10_000, MinAmountOut: 19_554}, v)

	params.FixedIn = false
	params.Amount = big.NewInt(19_752)
	params.OtherAmount = big.NewInt(10_100)
	ix, err = BuildSwapInstruction(params)
	require.NoError(t, err)
	data, err = ix.Data()
	require.NoError(t, err)
	v, err = DecodeInstruction(data)
	require.NoError(t, err)
	require.Equal(t, &SwapBaseOutArgs{MaxAmountIn: 10_100, AmountOut: 19_752}, v)

	_, err = DecodeInstruction([]byte{3, 0, 0})
	require.ErrorIs(t, err, shared.ErrUnknownTag)
}

func TestProgramVersions(t *testing.T) {
	v, err := VersionFor(ProgramIDV5)
	require.NoError(t, err)
	require.Equal(t, shared.PoolVersionV5, v)
	_, err = VersionFor(key(1))
	require.ErrorIs(t, err, shared.ErrInvalidVersion)
	_, err = ProgramIDFor(shared.PoolVersionClmm)
	require.ErrorIs(t, err, shared.ErrInvalidVersion)
}

func binaryU128(v uint64) bin.Uint128 {
	return bin.Uint128{Lo: v}
}

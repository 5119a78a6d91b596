package clmm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/shared"
	"github.com/krazyTry/raydium-go/u128"
)

func TestAccountSizes(t *testing.T) {
	for _, tc := range []struct {
		name string
		data func() ([]byte, error)
		size int
	}{
		{"PoolState", func() ([]byte, error) { return EncodeAccount(&PoolStateLayout{}) }, 1544},
		{"TickArrayState", func() ([]byte, error) { return EncodeAccount(&TickArrayLayout{}) }, 10240},
		{"TickArrayBitmapExtension", func() ([]byte, error) { return EncodeAccount(&TickArrayBitmapExtensionLayout{}) }, 1832},
		{"AmmConfig", func() ([]byte, error) { return EncodeAccount(&AmmConfigLayout{}) }, 117},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.data()
			require.NoError(t, err)
			require.Len(t, data, tc.size)
		})
	}
}

func TestPoolStateRoundTrip(t *testing.T) {
	state := &PoolStateLayout{
		Bump:                7,
		AmmConfig:           testAmmConfig,
		TokenMint0:          testMintA,
		TokenMint1:          testMintB,
		TokenVault0:         solana.PublicKeyFromBytes(bytes.Repeat([]byte{3}, 32)),
		TokenVault1:         solana.PublicKeyFromBytes(bytes.Repeat([]byte{4}, 32)),
		MintDecimals0:       9,
		MintDecimals1:       6,
		TickSpacing:         60,
		Liquidity:           u128.MustFromBig(shared.MaxU128),
		SqrtPriceX64:        u128.MustFromBig(shared.OneQ64),
		TickCurrent:         -443636,
		FeeGrowthGlobal0X64: u128.MustFromBig(new(big.Int).Lsh(big.NewInt(123456789), 70)),
		Status:              2,
		OpenTime:            1_700_000_000,
		RecentEpoch:         512,
	}
	state.RewardInfos[1].RewardState = 1
	state.RewardInfos[1].TokenMint = testMintB
	state.RewardInfos[2].RewardGrowthGlobalX64 = u128.MustFromBig(big.NewInt(99))
	state.TickArrayBitmap[0] = 1
	state.TickArrayBitmap[15] = 1 << 63

	data, err := EncodeAccount(state)
	require.NoError(t, err)
	require.Equal(t, poolStateDiscriminator, data[:8])

	decoded, err := DecodeAccount(data)
	require.NoError(t, err)
	require.Equal(t, state, decoded)

	_, err = DecodePoolState(data[:100])
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = DecodeTickArray(data)
	require.ErrorIs(t, err, shared.ErrUnknownTag)
}

func TestTickArrayRoundTrip(t *testing.T) {
	L := big.NewInt(5_000_000)
	data := tickArrayAccount(t, -120, 2, map[int32]*big.Int{-120: L, -4: new(big.Int).Neg(L)})

	arr, err := DecodeTickArray(data)
	require.NoError(t, err)
	require.Equal(t, int32(-120), arr.StartTickIndex)
	require.Equal(t, uint8(2), arr.InitializedTickCount)

	page := arr.Page()
	require.Equal(t, testPoolID, page.PoolID)
	require.Equal(t, 0, page.Ticks[0].LiquidityNet.Cmp(L))
	require.Equal(t, int32(-4), page.Ticks[58].Tick)
	require.Equal(t, 0, page.Ticks[58].LiquidityNet.Cmp(new(big.Int).Neg(L)))
	require.True(t, page.Ticks[58].IsInitialized())
	require.False(t, page.Ticks[1].IsInitialized())

	again, err := EncodeAccount(arr)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestBitmapExtensionRoundTrip(t *testing.T) {
	ext := &TickArrayBitmapExtensionLayout{PoolID: testPoolID}
	ext.PositiveTickArrayBitmap[0][0] = 1
	ext.NegativeTickArrayBitmap[13][7] = 1 << 63

	data, err := EncodeAccount(ext)
	require.NoError(t, err)
	decoded, err := DecodeBitmapExtension(data)
	require.NoError(t, err)
	require.Equal(t, ext, decoded)

	bm := decoded.Bitmap()
	require.Equal(t, uint64(1), bm.Positive[0][0])
	require.Equal(t, uint64(1<<63), bm.Negative[13][7])
}

func TestUnknownAccount(t *testing.T) {
	data := make([]byte, 200)
	copy(data, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	_, err := DecodeAccount(data)
	require.ErrorIs(t, err, shared.ErrUnknownTag)
}

func TestNewPoolValidation(t *testing.T) {
	config := &AmmConfigLayout{TradeFeeRate: 2500, TickSpacing: 10}
	state := &PoolStateLayout{TokenMint0: testMintA, TokenMint1: testMintB, TickSpacing: 10, SqrtPriceX64: u128.MustFromBig(shared.OneQ64)}

	pool, err := NewPool(testPoolID, state, config, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(2500), pool.TradeFeeRate)
	require.True(t, pool.HasMint(testMintB))
	require.False(t, pool.HasMint(testPoolID))

	_, err = NewPool(testPoolID, state, nil, nil)
	require.ErrorIs(t, err, shared.ErrPoolNotFound)

	bad := *state
	bad.SqrtPriceX64 = u128.MustFromBig(big.NewInt(1))
	_, err = NewPool(testPoolID, &bad, config, nil)
	require.ErrorIs(t, err, shared.ErrRange)

	bad = *state
	bad.TickSpacing = 0
	_, err = NewPool(testPoolID, &bad, config, nil)
	require.ErrorIs(t, err, shared.ErrRange)

	_, err = NewPool(testPoolID, state, &AmmConfigLayout{TradeFeeRate: 1_000_000}, nil)
	require.ErrorIs(t, err, shared.ErrRange)
}

func TestPagesToFetch(t *testing.T) {
	pool, _ := scenarioPool(t, false)
	keys, starts, err := pool.PagesToFetch(2)
	require.NoError(t, err)
	require.Len(t, keys, len(starts))
	require.Contains(t, starts, int32(-60))
	require.Contains(t, starts, int32(60))
	for i, start := range starts {
		want, err := DeriveTickArrayAddress(ProgramID, testPoolID, start)
		require.NoError(t, err)
		require.Equal(t, want, keys[i])
	}
}

func TestDeriveAddresses(t *testing.T) {
	a, err := DeriveTickArrayAddress(ProgramID, testPoolID, -60)
	require.NoError(t, err)
	b, err := DeriveTickArrayAddress(ProgramID, testPoolID, -60)
	require.NoError(t, err)
	c, err := DeriveTickArrayAddress(ProgramID, testPoolID, 60)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	ext, err := DeriveBitmapExtensionAddress(ProgramID, testPoolID)
	require.NoError(t, err)
	obs, err := DeriveObservationAddress(ProgramID, testPoolID)
	require.NoError(t, err)
	require.NotEqual(t, ext, obs)
}

func swapParams(t *testing.T, pool *Pool) *SwapParams {
	t.Helper()
	page, err := DeriveTickArrayAddress(ProgramID, testPoolID, -60)
	require.NoError(t, err)
	return &SwapParams{
		Pool:                 pool,
		Payer:                solana.PublicKeyFromBytes(bytes.Repeat([]byte{10}, 32)),
		InputTokenAccount:    solana.PublicKeyFromBytes(bytes.Repeat([]byte{11}, 32)),
		OutputTokenAccount:   solana.PublicKeyFromBytes(bytes.Repeat([]byte{12}, 32)),
		InputMint:            testMintA,
		Amount:               big.NewInt(1_000_000),
		OtherAmountThreshold: big.NewInt(990_000),
		SqrtPriceLimitX64:    DefaultSqrtPriceLimit(true),
		IsBaseInput:          true,
		TickArrays:           []solana.PublicKey{page},
	}
}

func TestBuildSwapInstruction(t *testing.T) {
	pool, _ := scenarioPool(t, false)
	params := swapParams(t, pool)

	ix, err := BuildSwapInstruction(params)
	require.NoError(t, err)
	require.Equal(t, ProgramID, ix.ProgramID())
	require.Len(t, ix.Accounts(), 11)
	require.True(t, ix.Accounts()[0].IsSigner)
	require.Equal(t, params.TickArrays[0], ix.Accounts()[9].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, swapDiscriminator, data[:8])
	require.Len(t, data, 8+33)

	v, err := DecodeInstruction(data)
	require.NoError(t, err)
	args, ok := v.(*SwapArgs)
	require.True(t, ok)
	require.Equal(t, uint64(1_000_000), args.Amount)
	require.Equal(t, uint64(990_000), args.OtherAmountThreshold)
	require.Equal(t, 0, u128.ToBig(args.SqrtPriceLimitX64).Cmp(params.SqrtPriceLimitX64))
	require.True(t, args.IsBaseInput)

	params.TickArrays = nil
	_, err = BuildSwapInstruction(params)
	require.Error(t, err)
}

func TestBuildSwapV2Instruction(t *testing.T) {
	pool, _ := scenarioPool(t, false)
	params := swapParams(t, pool)
	params.InputMint = testMintB
	params.SqrtPriceLimitX64 = DefaultSqrtPriceLimit(false)

	ix, err := BuildSwapV2Instruction(params)
	require.NoError(t, err)
	accounts := ix.Accounts()
	require.Len(t, accounts, 15)
	require.Equal(t, testMintB, accounts[11].PublicKey)
	require.Equal(t, testMintA, accounts[12].PublicKey)
	require.Equal(t, params.TickArrays[0], accounts[14].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, swapV2Discriminator, data[:8])
	v, err := DecodeInstruction(data)
	require.NoError(t, err)
	_, ok := v.(*SwapV2Args)
	require.True(t, ok)

	params.InputMint = testPoolID
	_, err = BuildSwapV2Instruction(params)
	require.ErrorIs(t, err, shared.ErrTokenNotFound)
}

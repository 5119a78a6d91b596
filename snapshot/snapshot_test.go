package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/raydium-go/shared"
	solanago "github.com/krazyTry/raydium-go/solana"
)

func key(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, 32))
}

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	token, err := solanago.EncodeTokenAccount(&solanago.Account{Mint: key(7), Owner: key(8), Amount: 42, IsInitialized: true})
	require.NoError(t, err)
	return New(123, map[solana.PublicKey]*Account{
		key(1): {Owner: solana.TokenProgramID, Lamports: 2_039_280, Data: token},
		key(2): {Owner: key(9), Lamports: 1, Data: []byte{1, 2, 3}},
		key(3): {Owner: solana.SystemProgramID, Lamports: 5},
	})
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	s := testSnapshot(t)
	data, err := Encode(s)
	require.NoError(t, err)
	require.Equal(t, FileMagic, uint32(data[0])|uint32(data[1])<<8|uint32(data[2])<<16|uint32(data[3])<<24)

	out, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, uint64(123), out.Slot)
	require.Equal(t, s.Keys(), out.Keys())
	for _, k := range s.Keys() {
		want, _ := s.Get(k)
		got, ok := out.Get(k)
		require.True(t, ok)
		require.Equal(t, want.Owner, got.Owner)
		require.Equal(t, want.Lamports, got.Lamports)
		require.True(t, bytes.Equal(want.Data, got.Data))
	}

	again, err := Encode(out)
	require.NoError(t, err)
	require.Equal(t, data, again)

	path := filepath.Join(t.TempDir(), "snap.bin")
	require.NoError(t, WriteFile(path, s))
	fromFile, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, fromFile.Len())
}

func TestDecodeRejectsCorruptFiles(t *testing.T) {
	data, err := Encode(testSnapshot(t))
	require.NoError(t, err)

	_, err = Decode(data[:10])
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = Decode(data[:len(data)-1])
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = Decode(append(bytes.Clone(data), 0))
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	bad := bytes.Clone(data)
	bad[0] ^= 0xff
	_, err = Decode(bad)
	require.ErrorIs(t, err, shared.ErrUnknownTag)

	// count claims more entries than the file holds
	bad = bytes.Clone(data)
	bad[12] = 200
	_, err = Decode(bad)
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

func TestSnapshotAccessors(t *testing.T) {
	s := testSnapshot(t)

	token, ok := s.TokenAccount(key(1))
	require.True(t, ok)
	require.Equal(t, uint64(42), token.Amount)
	require.Equal(t, key(7), token.Mint)

	_, ok = s.TokenAccount(key(2))
	require.False(t, ok)

	_, err := s.Data(key(4))
	require.ErrorIs(t, err, shared.ErrPoolNotFound)
	_, err = s.Mint(key(4))
	require.ErrorIs(t, err, shared.ErrTokenNotFound)

	merged := s.Merge(New(200, map[solana.PublicKey]*Account{key(2): {Owner: key(5)}, key(4): {}}))
	require.Equal(t, uint64(200), merged.Slot)
	require.Equal(t, 4, merged.Len())
	acc, _ := merged.Get(key(2))
	require.Equal(t, key(5), acc.Owner)
	require.Equal(t, 3, s.Len())
}

const poolList = `{
  "official": [{
    "id": "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2",
    "baseMint": "So11111111111111111111111111111111111111112",
    "quoteMint": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "lpMint": "8HoQnePLqPj4M7PUDzfw8e3Ymdwgc7NLGnaTUapubyvu",
    "baseDecimals": 9,
    "quoteDecimals": 6,
    "lpDecimals": 9,
    "version": 4,
    "programId": "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
    "baseVault": "DQyrAcCrDXQ7NeoqGgDCZwBvWDcYmFCjSb9JtteuvPpz",
    "quoteVault": "HLmqeL62xR1QoZ1HKKbXRrdN1p3phKpxRMb2VVopvBBz",
    "marketId": "8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6",
    "marketProgramId": "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"
  }],
  "unOfficial": [],
  "data": [{
    "id": "2QdhepnKRTLjjSqPL1PtKNwqrUkoLee5Gqs8bvZhRdMv",
    "mintA": "So11111111111111111111111111111111111111112",
    "mintB": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
    "mintDecimalsA": 9,
    "mintDecimalsB": 6,
    "ammConfig": {"id": "HfERMT5DRA6C1TAqecrJQFpmkf3wsWTMncqnj3RDg5aw", "index": 2, "tickSpacing": 1, "tradeFeeRate": 500}
  }]
}`

func TestParsePoolList(t *testing.T) {
	clmmProgram := solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	pools, err := ParsePoolList([]byte(poolList), clmmProgram)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	legacy := pools[0]
	require.Equal(t, shared.PoolVersionV4, legacy.Version)
	require.True(t, legacy.Official)
	require.Equal(t, solana.WrappedSol, legacy.BaseMint)
	require.Equal(t, uint8(9), legacy.BaseDecimals)
	require.Equal(t, uint8(6), legacy.QuoteDecimals)
	require.Equal(t, "8BnEgHoWFysVcuFFX7QztDmzuH8r5ZFvyP3sYwn1XTh6", legacy.MarketID.String())

	clmm := pools[1]
	require.Equal(t, shared.PoolVersionClmm, clmm.Version)
	require.Equal(t, clmmProgram, clmm.ProgramID)
	require.Equal(t, int32(1), clmm.TickSpacing)
	require.Equal(t, "HfERMT5DRA6C1TAqecrJQFpmkf3wsWTMncqnj3RDg5aw", clmm.AmmConfig.String())

	_, err = ParsePoolList([]byte(`{"official":[{"id":"58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2","version":3}]}`), clmmProgram)
	require.ErrorIs(t, err, shared.ErrInvalidVersion)

	_, err = ParsePoolList([]byte(`{"data":[{"id":"not-a-key"}]}`), clmmProgram)
	require.ErrorIs(t, err, shared.ErrInvalidLayout)

	_, err = ParsePoolList([]byte(`{`), clmmProgram)
	require.ErrorIs(t, err, shared.ErrInvalidLayout)
}

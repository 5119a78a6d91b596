package u128

import (
	"math/big"
	"testing"

	binary "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/require"
)

func TestGenUint128FromString(t *testing.T) {
	v := GenUint128FromString("18446744073709551617")
	require.Equal(t, uint64(1), v.Lo)
	require.Equal(t, uint64(1), v.Hi)

	require.Panics(t, func() { GenUint128FromString("-1") })
	require.Panics(t, func() { GenUint128FromString("340282366920938463463374607431768211456") })
}

func TestBigRoundTrip(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	for _, s := range []string{"0", "1", "18446744073709551616", max.String()} {
		want, _ := new(big.Int).SetString(s, 10)
		v, err := FromBig(want)
		require.NoError(t, err)
		require.Equal(t, 0, want.Cmp(ToBig(v)), s)
	}

	_, err := FromBig(big.NewInt(-1))
	require.Error(t, err)
	_, err = FromBig(new(big.Int).Add(max, big.NewInt(1)))
	require.Error(t, err)
}

func TestInt128(t *testing.T) {
	minus := Int128ToBig(binary.Int128{Lo: ^uint64(0), Hi: ^uint64(0)})
	require.Equal(t, int64(-1), minus.Int64())

	for _, n := range []int64{-5_000_000, -1, 0, 1, 1 << 62} {
		v, err := Int128FromBig(big.NewInt(n))
		require.NoError(t, err)
		require.Equal(t, n, Int128ToBig(v).Int64())
	}

	_, err := Int128FromBig(new(big.Int).Lsh(big.NewInt(1), 127))
	require.Error(t, err)
}

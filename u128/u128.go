package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

var (
	mask64 = new(big.Int).SetUint64(^uint64(0))
	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	two127 = new(big.Int).Lsh(big.NewInt(1), 127)
)

type Uint128 binary.Uint128

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	} else if i.Sign() < 0 {
		return errors.New("value cannot be negative")
	} else if i.BitLen() > 128 {
		return errors.New("value overflows Uint128")
	}
	u.Lo = i.Uint64()
	u.Hi = i.Rsh(i, 64).Uint64()
	return nil
}

func GenUint128FromString(num string) binary.Uint128 {
	u128 := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(u128)); err != nil {
		panic(err)
	}
	return *u128
}

// ToBig returns the unsigned value of v.
func ToBig(v binary.Uint128) *big.Int {
	out := new(big.Int).SetUint64(v.Hi)
	out.Lsh(out, 64)
	return out.Or(out, new(big.Int).SetUint64(v.Lo))
}

// FromBig converts a non-negative integer of at most 128 bits.
func FromBig(v *big.Int) (binary.Uint128, error) {
	if v == nil {
		return binary.Uint128{}, nil
	}
	if v.Sign() < 0 {
		return binary.Uint128{}, errors.New("value cannot be negative")
	}
	if v.BitLen() > 128 {
		return binary.Uint128{}, errors.New("value overflows Uint128")
	}
	return binary.Uint128{
		Lo: new(big.Int).And(v, mask64).Uint64(),
		Hi: new(big.Int).Rsh(v, 64).Uint64(),
	}, nil
}

// MustFromBig is FromBig for values already known to fit.
func MustFromBig(v *big.Int) binary.Uint128 {
	out, err := FromBig(v)
	if err != nil {
		panic(err)
	}
	return out
}

// Int128ToBig interprets v as a two's complement signed integer.
func Int128ToBig(v binary.Int128) *big.Int {
	out := ToBig(binary.Uint128(v))
	if out.Cmp(two127) >= 0 {
		out.Sub(out, two128)
	}
	return out
}

// Int128FromBig encodes v as two's complement. Values outside [-2^127, 2^127) are rejected.
func Int128FromBig(v *big.Int) (binary.Int128, error) {
	if v == nil {
		return binary.Int128{}, nil
	}
	if v.Cmp(two127) >= 0 || v.Cmp(new(big.Int).Neg(two127)) < 0 {
		return binary.Int128{}, errors.New("value overflows Int128")
	}
	tc := new(big.Int).Set(v)
	if tc.Sign() < 0 {
		tc.Add(tc, two128)
	}
	return binary.Int128{
		Lo: new(big.Int).And(tc, mask64).Uint64(),
		Hi: new(big.Int).Rsh(tc, 64).Uint64(),
	}, nil
}

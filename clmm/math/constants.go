package math

import (
	"math/big"
)

const (
	MinTick int32 = -443636
	MaxTick int32 = 443636

	// TickArraySize is the number of tick slots on one tick-array page.
	TickArraySize = 60
	// TickArrayBitmapSize is the number of pages tracked by the pool's default bitmap.
	TickArrayBitmapSize = 1024
)

var (
	MinSqrtPriceX64 = bigIntFromString("4295048016")
	MaxSqrtPriceX64 = bigIntFromString("79226673521066979257578248091")
)

func bigIntFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big.Int literal: " + s)
	}
	return v
}

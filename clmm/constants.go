package clmm

import (
	"github.com/gagliardetto/solana-go"
)

var (
	ProgramID     = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
	MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

const (
	tickArraySeed       = "tick_array"
	bitmapExtensionSeed = "pool_tick_array_bitmap_extension"
	observationSeed     = "observation"
	ammConfigSeed       = "amm_config"
	poolSeed            = "pool"
	poolVaultSeed       = "pool_vault"
)

package amm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/shared"
)

var (
	// ProgramIDV4 is the constant product AMM program.
	ProgramIDV4 = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	// ProgramIDV5 is the stable AMM program.
	ProgramIDV5 = solana.MustPublicKeyFromBase58("5quBtoiQqxF9Jv6KYKctB59NT3gtJD2Y65kdnB1Uev3h")
	// SerumProgramIDV3 is the order book both AMM versions settle through.
	SerumProgramIDV3 = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
)

const authoritySeed = "amm authority"

// Default swap fee of both legacy programs.
const (
	LiquidityFeesNumerator   = 25
	LiquidityFeesDenominator = 10_000
)

// ProgramIDFor maps a pool version to its program.
func ProgramIDFor(version shared.PoolVersion) (solana.PublicKey, error) {
	switch version {
	case shared.PoolVersionV4:
		return ProgramIDV4, nil
	case shared.PoolVersionV5:
		return ProgramIDV5, nil
	}
	return solana.PublicKey{}, fmt.Errorf("%w: legacy pool version %d", shared.ErrInvalidVersion, version)
}

// VersionFor maps a program id to its pool version.
func VersionFor(programID solana.PublicKey) (shared.PoolVersion, error) {
	switch {
	case programID.Equals(ProgramIDV4):
		return shared.PoolVersionV4, nil
	case programID.Equals(ProgramIDV5):
		return shared.PoolVersionV5, nil
	}
	return 0, fmt.Errorf("%w: program %s", shared.ErrInvalidVersion, programID)
}

// AuthorityPDA derives the authority that owns the pool vaults of programID.
func AuthorityPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(authoritySeed)}, programID)
}

package clmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// DeriveTickArrayAddress derives the tick-array PDA; the start index is big endian.
func DeriveTickArrayAddress(programID, pool solana.PublicKey, startTickIndex int32) (solana.PublicKey, error) {
	startBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(startBytes, uint32(startTickIndex))
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(tickArraySeed),
		pool.Bytes(),
		startBytes,
	}, programID)
	return pda, err
}

func DeriveBitmapExtensionAddress(programID, pool solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(bitmapExtensionSeed),
		pool.Bytes(),
	}, programID)
	return pda, err
}

func DeriveObservationAddress(programID, pool solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(observationSeed),
		pool.Bytes(),
	}, programID)
	return pda, err
}

func DeriveAmmConfigAddress(programID solana.PublicKey, index uint16) (solana.PublicKey, error) {
	indexBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(indexBytes, index)
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(ammConfigSeed),
		indexBytes,
	}, programID)
	return pda, err
}

func DerivePoolAddress(programID, ammConfig, mintA, mintB solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(poolSeed),
		ammConfig.Bytes(),
		mintA.Bytes(),
		mintB.Bytes(),
	}, programID)
	return pda, err
}

func DerivePoolVaultAddress(programID, pool, mint solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{
		[]byte(poolVaultSeed),
		pool.Bytes(),
		mint.Bytes(),
	}, programID)
	return pda, err
}

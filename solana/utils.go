package solana

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountDiscriminator is the Anchor 8-byte prefix of account name.
func AccountDiscriminator(name string) []byte {
	return sighash("account", name)
}

// InstructionDiscriminator is the Anchor 8-byte prefix of instruction name.
func InstructionDiscriminator(name string) []byte {
	return sighash("global", name)
}

func sighash(namespace, name string) []byte {
	hash := sha256.Sum256([]byte(namespace + ":" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out[:]
}

// GenProgramAccountFilter selects the Anchor accounts of type key, sized
// dataSize when non-zero, and holding owner at offset when owner is set.
func GenProgramAccountFilter(key string, dataSize uint64, owner solana.PublicKey, offset uint64) *rpc.GetProgramAccountsOpts {

	opt := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  AccountDiscriminator(key),
				},
			},
		},
	}
	if dataSize > 0 {
		opt.Filters = append(opt.Filters, rpc.RPCFilter{DataSize: dataSize})
	}
	if owner.Equals(solana.PublicKey{}) {
		return opt
	}

	opt.Filters = append(opt.Filters, rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: offset,
			Bytes:  owner[:],
		},
	})
	return opt
}

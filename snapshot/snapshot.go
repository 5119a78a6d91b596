// Package snapshot holds the raw accounts one quote request is computed
// from. A Snapshot is never mutated after it is built.
package snapshot

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/shared"
	solanago "github.com/krazyTry/raydium-go/solana"
)

// Account is one account as returned by getMultipleAccounts.
type Account struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Snapshot is an immutable set of accounts read at Slot.
type Snapshot struct {
	Slot     uint64
	accounts map[solana.PublicKey]*Account
}

// New copies accounts into a Snapshot.
func New(slot uint64, accounts map[solana.PublicKey]*Account) *Snapshot {
	s := &Snapshot{Slot: slot, accounts: make(map[solana.PublicKey]*Account, len(accounts))}
	for key, acc := range accounts {
		if acc == nil {
			continue
		}
		s.accounts[key] = &Account{
			Owner:    acc.Owner,
			Lamports: acc.Lamports,
			Data:     bytes.Clone(acc.Data),
		}
	}
	return s
}

// Merge returns a new Snapshot holding the accounts of s and other. On a
// key present in both, other wins. The slot is the larger of the two.
func (s *Snapshot) Merge(other *Snapshot) *Snapshot {
	all := make(map[solana.PublicKey]*Account, s.Len()+other.Len())
	for key, acc := range s.accounts {
		all[key] = acc
	}
	for key, acc := range other.accounts {
		all[key] = acc
	}
	return New(max(s.Slot, other.Slot), all)
}

// Len is the number of accounts.
func (s *Snapshot) Len() int { return len(s.accounts) }

// Keys returns the account addresses in byte order.
func (s *Snapshot) Keys() []solana.PublicKey {
	keys := make([]solana.PublicKey, 0, len(s.accounts))
	for key := range s.accounts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}

// Get returns the account at key. The data must not be modified.
func (s *Snapshot) Get(key solana.PublicKey) (*Account, bool) {
	acc, ok := s.accounts[key]
	return acc, ok
}

// Data returns the data of key or shared.ErrPoolNotFound when it is missing.
func (s *Snapshot) Data(key solana.PublicKey) ([]byte, error) {
	acc, ok := s.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: account %s not in snapshot", shared.ErrPoolNotFound, key)
	}
	return acc.Data, nil
}

// TokenAccount decodes the SPL token account at address.
func (s *Snapshot) TokenAccount(address solana.PublicKey) (*solanago.Account, bool) {
	acc, ok := s.accounts[address]
	if !ok {
		return nil, false
	}
	token, err := solanago.DecodeTokenAccount(address, acc.Data)
	if err != nil {
		return nil, false
	}
	return token, true
}

// Mint decodes the mint at address. The owning token program is taken from
// the account owner.
func (s *Snapshot) Mint(address solana.PublicKey) (*solanago.Token, error) {
	acc, ok := s.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: mint %s not in snapshot", shared.ErrTokenNotFound, address)
	}
	return solanago.DecodeMint(address, acc.Owner, acc.Data)
}

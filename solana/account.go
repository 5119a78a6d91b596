package solana

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
)

const TokenAccountSize = 165

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

type Account struct {
	Address solana.PublicKey
	// Mint associated with the account
	Mint solana.PublicKey

	// Owner of the account
	Owner solana.PublicKey

	// Number of tokens the account holds
	Amount uint64

	// Authority that can transfer tokens from the account
	Delegate *solana.PublicKey

	// Number of tokens the delegate is authorized to transfer
	DelegatedAmount uint64

	IsInitialized bool
	IsFrozen      bool

	// True if the account is a native token account
	IsNative bool

	// If the account is a native token account, it must be rent-exempt.
	// The rent-exempt reserve is the amount that must remain in the balance until the account is closed.
	RentExemptReserve *uint64

	// Optional authority to close the account
	CloseAuthority *solana.PublicKey
}

// TokenAccountLayout https://github.com/solana-labs/solana-program-library/blob/d72289c79a04411c69a8bf1054f7156b6196f9b3/token/js/src/state/account.ts#L69
type TokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

func (*TokenAccountLayout) Span() int { return TokenAccountSize }

func (obj *TokenAccountLayout) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.Mint = r.PublicKey()
	obj.Owner = r.PublicKey()
	obj.Amount = r.U64()
	obj.DelegateOption = r.U32()
	obj.Delegate = r.PublicKey()
	obj.State = r.U8()
	obj.IsNativeOption = r.U32()
	obj.IsNative = r.U64()
	obj.DelegatedAmount = r.U64()
	obj.CloseAuthorityOption = r.U32()
	obj.CloseAuthority = r.PublicKey()
	return r.Err()
}

func (obj *TokenAccountLayout) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.PublicKey(obj.Mint)
	w.PublicKey(obj.Owner)
	w.U64(obj.Amount)
	w.U32(obj.DelegateOption)
	w.PublicKey(obj.Delegate)
	w.U8(obj.State)
	w.U32(obj.IsNativeOption)
	w.U64(obj.IsNative)
	w.U64(obj.DelegatedAmount)
	w.U32(obj.CloseAuthorityOption)
	w.PublicKey(obj.CloseAuthority)
	return w.Err()
}

// DecodeTokenAccount decodes an SPL token account. Token-2022 accounts
// carry extensions after the base 165 bytes; they are ignored.
func DecodeTokenAccount(address solana.PublicKey, data []byte) (*Account, error) {
	raw := &TokenAccountLayout{}
	if err := layout.Decode(data, raw); err != nil {
		return nil, err
	}
	account := &Account{
		Address:         address,
		Mint:            raw.Mint,
		Owner:           raw.Owner,
		Amount:          raw.Amount,
		DelegatedAmount: raw.DelegatedAmount,
		IsInitialized:   AccountState(raw.State) != AccountStateUninitialized,
		IsFrozen:        AccountState(raw.State) == AccountStateFrozen,
		IsNative:        raw.IsNativeOption > 0,
	}
	if raw.DelegateOption > 0 {
		delegate := raw.Delegate
		account.Delegate = &delegate
	}
	if raw.IsNativeOption > 0 {
		reserve := raw.IsNative
		account.RentExemptReserve = &reserve
	}
	if raw.CloseAuthorityOption > 0 {
		closeAuthority := raw.CloseAuthority
		account.CloseAuthority = &closeAuthority
	}
	return account, nil
}

// EncodeTokenAccount is the inverse of DecodeTokenAccount.
func EncodeTokenAccount(a *Account) ([]byte, error) {
	raw := &TokenAccountLayout{
		Mint:            a.Mint,
		Owner:           a.Owner,
		Amount:          a.Amount,
		DelegatedAmount: a.DelegatedAmount,
	}
	switch {
	case a.IsFrozen:
		raw.State = uint8(AccountStateFrozen)
	case a.IsInitialized:
		raw.State = uint8(AccountStateInitialized)
	}
	if a.Delegate != nil {
		raw.DelegateOption = 1
		raw.Delegate = *a.Delegate
	}
	if a.IsNative {
		raw.IsNativeOption = 1
		if a.RentExemptReserve != nil {
			raw.IsNative = *a.RentExemptReserve
		}
	}
	if a.CloseAuthority != nil {
		raw.CloseAuthorityOption = 1
		raw.CloseAuthority = *a.CloseAuthority
	}
	return layout.Encode(raw)
}

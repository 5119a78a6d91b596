package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// TokenAccountState is the progress of resolving one owner token account.
type TokenAccountState uint8

const (
	NeedAccount TokenAccountState = iota
	Resolving
	Ready
)

func (s TokenAccountState) String() string {
	switch s {
	case NeedAccount:
		return "need-account"
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// AccountLookup reports token accounts that already exist on chain.
type AccountLookup interface {
	TokenAccount(address solana.PublicKey) (*Account, bool)
}

// TokenAccount is the owner account used for one mint in a transaction.
type TokenAccount struct {
	Mint         solana.PublicKey
	TokenProgram solana.PublicKey
	Address      solana.PublicKey
	State        TokenAccountState
	// Created is set when the resolver emitted the create instruction.
	Created bool
	// Wrapped is the lamports moved into a WSOL account.
	Wrapped uint64
}

// Resolver finds or creates the associated token accounts of owner and
// collects the setup and cleanup instructions they need. It is not safe
// for concurrent use.
type Resolver struct {
	owner  solana.PublicKey
	payer  solana.PublicKey
	lookup AccountLookup

	accounts map[solana.PublicKey]*TokenAccount
	order    []solana.PublicKey
	setup    []solana.Instruction
	cleanup  []solana.Instruction
}

// NewResolver returns a Resolver for owner's accounts paid by payer.
func NewResolver(owner, payer solana.PublicKey, lookup AccountLookup) *Resolver {
	return &Resolver{
		owner:    owner,
		payer:    payer,
		lookup:   lookup,
		accounts: make(map[solana.PublicKey]*TokenAccount),
	}
}

// FindAssociatedTokenAddress derives the associated token account of
// owner for a mint held by tokenProgram.
func FindAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindProgramAddress([][]byte{
		owner.Bytes(),
		tokenProgram.Bytes(),
		mint.Bytes(),
	}, solana.SPLAssociatedTokenAccountProgramID)
	return address, err
}

// Resolve returns the token account of mint, moving it to Ready. A missing
// account gets a create instruction. For the native mint, wrap lamports
// are transferred in and synced, and the account is closed afterwards.
func (r *Resolver) Resolve(mint, tokenProgram solana.PublicKey, wrap uint64) (*TokenAccount, error) {
	acc, ok := r.accounts[mint]
	if !ok {
		acc = &TokenAccount{Mint: mint, TokenProgram: tokenProgram, State: NeedAccount}
		r.accounts[mint] = acc
		r.order = append(r.order, mint)
	}
	if acc.State == NeedAccount {
		if err := r.resolve(acc); err != nil {
			return nil, err
		}
	}
	if acc.State != Ready {
		return nil, fmt.Errorf("token account for %s is %s", mint, acc.State)
	}
	if wrap > 0 {
		if !mint.Equals(solana.WrappedSol) {
			return nil, fmt.Errorf("cannot wrap lamports into %s", mint)
		}
		acc.Wrapped += wrap
	}
	return acc, nil
}

func (r *Resolver) resolve(acc *TokenAccount) error {
	address, err := FindAssociatedTokenAddress(r.owner, acc.Mint, acc.TokenProgram)
	if err != nil {
		return fmt.Errorf("associated token address for %s: %w", acc.Mint, err)
	}
	acc.Address = address
	acc.State = Resolving

	if _, exists := r.lookup.TokenAccount(address); !exists {
		r.setup = append(r.setup, r.createInstruction(acc))
		acc.Created = true
	}
	if acc.Mint.Equals(solana.WrappedSol) {
		r.cleanup = append(r.cleanup, token.NewCloseAccountInstruction(
			acc.Address,
			r.owner,
			r.owner,
			[]solana.PublicKey{},
		).Build())
	}
	acc.State = Ready
	return nil
}

func (r *Resolver) createInstruction(acc *TokenAccount) solana.Instruction {
	if acc.TokenProgram.Equals(solana.TokenProgramID) {
		return associatedtokenaccount.NewCreateInstruction(r.payer, r.owner, acc.Mint).Build()
	}
	// The ATA program builder only knows the legacy token program.
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(r.payer, true, true),
			solana.NewAccountMeta(acc.Address, true, false),
			solana.NewAccountMeta(r.owner, false, false),
			solana.NewAccountMeta(acc.Mint, false, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
			solana.NewAccountMeta(acc.TokenProgram, false, false),
		},
		[]byte{1}, // CreateIdempotent
	)
}

// Account returns the state of mint's account, if Resolve has seen it.
func (r *Resolver) Account(mint solana.PublicKey) (*TokenAccount, bool) {
	acc, ok := r.accounts[mint]
	return acc, ok
}

// Wrap surrounds body with the collected setup and cleanup instructions
// and merges duplicates. WSOL accounts are funded once with the sum of
// their wrap amounts.
func (r *Resolver) Wrap(body ...solana.Instruction) []solana.Instruction {
	all := make([]solana.Instruction, 0, len(r.setup)+len(body)+len(r.cleanup)+2)
	all = append(all, r.setup...)
	for _, mint := range r.order {
		acc := r.accounts[mint]
		if acc.Wrapped == 0 {
			continue
		}
		all = append(all,
			system.NewTransferInstruction(acc.Wrapped, r.payer, acc.Address).Build(),
			token.NewSyncNativeInstruction(acc.Address).Build(),
		)
	}
	all = append(all, body...)
	all = append(all, r.cleanup...)
	return MergeInstructions(all)
}

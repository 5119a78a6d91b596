// Package fetch reads accounts over Solana RPC into snapshots. It is the
// only package that performs network I/O.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/krazyTry/raydium-go/snapshot"
	solanago "github.com/krazyTry/raydium-go/solana"
)

const (
	DefaultBatchSize  = 100
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 200 * time.Millisecond
	DefaultRate       = 10
)

// RPC is the subset of *rpc.Client the fetcher calls.
type RPC interface {
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, publicKey solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

type Fetcher struct {
	client     RPC
	logger     *zap.Logger
	limiter    ratelimit.Limiter
	commitment rpc.CommitmentType
	batchSize  int
	maxRetries int
	baseDelay  time.Duration
}

type Option func(*Fetcher)

func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithBatchSize caps the keys sent in one getMultipleAccounts call.
func WithBatchSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithRetry sets how often a failed call is retried and the first backoff,
// which doubles on every attempt.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(f *Fetcher) {
		f.maxRetries = maxRetries
		f.baseDelay = baseDelay
	}
}

// WithRate limits calls per second. A rate of zero or less disables the limit.
func WithRate(perSecond int) Option {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = ratelimit.NewUnlimited()
			return
		}
		f.limiter = ratelimit.New(perSecond)
	}
}

func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(f *Fetcher) {
		f.commitment = commitment
	}
}

func New(client RPC, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     client,
		logger:     zap.NewNop(),
		limiter:    ratelimit.New(DefaultRate),
		commitment: rpc.CommitmentConfirmed,
		batchSize:  DefaultBatchSize,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFromURL dials endpoint with the stock JSON-RPC client.
func NewFromURL(endpoint string, opts ...Option) *Fetcher {
	return New(rpc.New(endpoint), opts...)
}

// Accounts reads keys in batches. Accounts that do not exist are left out of
// the snapshot. The snapshot slot is the highest context slot of any batch.
func (f *Fetcher) Accounts(ctx context.Context, keys []solana.PublicKey) (*snapshot.Snapshot, error) {
	keys = unique(keys)
	accounts := make(map[solana.PublicKey]*snapshot.Account, len(keys))
	var slot uint64

	for start := 0; start < len(keys); start += f.batchSize {
		end := min(start+f.batchSize, len(keys))
		batch := keys[start:end]

		var res *rpc.GetMultipleAccountsResult
		err := f.withRetry(ctx, "getMultipleAccounts", func(ctx context.Context) error {
			f.limiter.Take()
			var err error
			res, err = f.client.GetMultipleAccountsWithOpts(ctx, batch, &rpc.GetMultipleAccountsOpts{
				Commitment: f.commitment,
				Encoding:   solana.EncodingBase64,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("get accounts %d..%d: %w", start, end, err)
		}
		if len(res.Value) != len(batch) {
			return nil, fmt.Errorf("get accounts %d..%d: %d results for %d keys", start, end, len(res.Value), len(batch))
		}

		slot = max(slot, res.Context.Slot)
		missing := 0
		for i, acc := range res.Value {
			if acc == nil {
				missing++
				continue
			}
			accounts[batch[i]] = convert(acc)
		}
		f.logger.Debug("batch fetched",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("missing", missing),
			zap.Uint64("slot", res.Context.Slot),
		)
	}

	f.logger.Info("accounts fetched", zap.Int("requested", len(keys)), zap.Int("found", len(accounts)), zap.Uint64("slot", slot))
	return snapshot.New(slot, accounts), nil
}

// ProgramAccounts reads every account of program whose Anchor type is
// accountName, sized dataSize when non-zero, and holding owner at offset when
// owner is set. The snapshot slot is zero since the call reports none.
func (f *Fetcher) ProgramAccounts(ctx context.Context, program solana.PublicKey, accountName string, dataSize uint64, owner solana.PublicKey, offset uint64) (*snapshot.Snapshot, error) {
	opts := solanago.GenProgramAccountFilter(accountName, dataSize, owner, offset)
	opts.Commitment = f.commitment

	var res rpc.GetProgramAccountsResult
	err := f.withRetry(ctx, "getProgramAccounts", func(ctx context.Context) error {
		f.limiter.Take()
		var err error
		res, err = f.client.GetProgramAccountsWithOpts(ctx, program, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get program accounts %s: %w", program, err)
	}

	accounts := make(map[solana.PublicKey]*snapshot.Account, len(res))
	for _, keyed := range res {
		if keyed == nil || keyed.Account == nil {
			continue
		}
		accounts[keyed.Pubkey] = convert(keyed.Account)
	}
	f.logger.Info("program accounts fetched", zap.Stringer("program", program), zap.String("type", accountName), zap.Int("found", len(accounts)))
	return snapshot.New(0, accounts), nil
}

func (f *Fetcher) withRetry(ctx context.Context, call string, fn func(context.Context) error) error {
	maxRetries := f.maxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := f.baseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		f.logger.Warn("rpc call failed, retrying",
			zap.String("call", call),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func convert(acc *rpc.Account) *snapshot.Account {
	out := &snapshot.Account{Owner: acc.Owner, Lamports: acc.Lamports}
	if acc.Data != nil {
		out.Data = acc.Data.GetBinary()
	}
	return out
}

func unique(keys []solana.PublicKey) []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{}, len(keys))
	out := make([]solana.PublicKey, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

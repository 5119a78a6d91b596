package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	raydium "github.com/krazyTry/raydium-go"
	"github.com/krazyTry/raydium-go/amm"
	"github.com/krazyTry/raydium-go/clmm"
	clmmmath "github.com/krazyTry/raydium-go/clmm/math"
	"github.com/krazyTry/raydium-go/config"
	"github.com/krazyTry/raydium-go/fetch"
	"github.com/krazyTry/raydium-go/route"
	"github.com/krazyTry/raydium-go/snapshot"
)

type env struct {
	cfg    *config.Config
	logger *zap.Logger
	client *raydium.Client
}

func setup(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewFromURL(cfg.RPCURL,
		fetch.WithLogger(logger),
		fetch.WithBatchSize(cfg.BatchSize),
		fetch.WithRetry(cfg.MaxRetries, cfg.RetryBackoff),
		fetch.WithRate(cfg.RequestsPerSec),
		fetch.WithCommitment(rpc.CommitmentType(cfg.Commitment)),
	)
	client := raydium.NewClient(raydium.WithLogger(logger), raydium.WithFetcher(fetcher))
	return &env{cfg: cfg, logger: logger, client: client}, nil
}

func (e *env) pools() ([]*snapshot.PoolInfo, error) {
	data, err := os.ReadFile(e.cfg.PoolList)
	if err != nil {
		return nil, fmt.Errorf("read pool list: %w", err)
	}
	return raydium.ParsePoolList(data, clmm.ProgramID)
}

func (e *env) load() (*snapshot.Snapshot, []*snapshot.PoolInfo, error) {
	pools, err := e.pools()
	if err != nil {
		return nil, nil, err
	}
	snap, err := snapshot.ReadFile(e.cfg.Snapshot)
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("snapshot loaded", zap.String("path", e.cfg.Snapshot), zap.Uint64("slot", snap.Slot), zap.Int("accounts", snap.Len()))
	return snap, pools, nil
}

func runFetch(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	pools, err := e.pools()
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetStringSlice("pool")
	if len(only) > 0 {
		if pools, err = selectPools(pools, only); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.logger.Info("fetch start", zap.String("rpc", e.cfg.RPCURL), zap.Int("pools", len(pools)), zap.Int("batch_size", e.cfg.BatchSize))
	snap, err := e.client.Load(ctx, pools)
	if err != nil {
		return err
	}
	if err := snapshot.WriteFile(e.cfg.Snapshot, snap); err != nil {
		return err
	}
	e.logger.Info("snapshot written", zap.String("path", e.cfg.Snapshot), zap.Uint64("slot", snap.Slot), zap.Int("accounts", snap.Len()))
	return nil
}

func selectPools(pools []*snapshot.PoolInfo, ids []string) ([]*snapshot.PoolInfo, error) {
	byID := make(map[solana.PublicKey]*snapshot.PoolInfo, len(pools))
	for _, p := range pools {
		byID[p.ID] = p
	}
	out := make([]*snapshot.PoolInfo, 0, len(ids))
	for _, id := range ids {
		key, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", id, err)
		}
		p, ok := byID[key]
		if !ok {
			return nil, fmt.Errorf("pool %s is not in the pool list", key)
		}
		out = append(out, p)
	}
	return out, nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	poolID, _ := cmd.Flags().GetString("pool")
	input, err := mintFlag(cmd, "input")
	if err != nil {
		return err
	}
	amount, err := amountFlag(cmd)
	if err != nil {
		return err
	}
	baseOut, _ := cmd.Flags().GetBool("base-out")
	priceLimit, err := decimalFlag(cmd, "price-limit")
	if err != nil {
		return err
	}

	snap, pools, err := e.load()
	if err != nil {
		return err
	}
	pools, err = selectPools(pools, []string{poolID})
	if err != nil {
		return err
	}
	decoded, err := e.client.Pools(snap, pools)
	if err != nil {
		return err
	}

	var res any
	switch p := decoded[0].(type) {
	case *route.ConcentratedPool:
		if baseOut {
			res, err = clmm.ComputeAmountIn(p.Pool, p.Store, input, amount, e.cfg.Slippage, priceLimit)
		} else {
			res, err = clmm.ComputeAmountOut(p.Pool, p.Store, input, amount, e.cfg.Slippage, priceLimit)
		}
	case *route.LegacyPool:
		if baseOut {
			res, err = amm.ComputeAmountIn(p.Pool, input, amount, e.cfg.Slippage)
		} else {
			res, err = amm.ComputeAmountOut(p.Pool, input, amount, e.cfg.Slippage)
		}
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func routeRequest(cmd *cobra.Command, cfg *config.Config) (*route.Request, error) {
	input, err := mintFlag(cmd, "input")
	if err != nil {
		return nil, err
	}
	output, err := mintFlag(cmd, "output")
	if err != nil {
		return nil, err
	}
	amount, err := amountFlag(cmd)
	if err != nil {
		return nil, err
	}
	return &route.Request{
		InputMint:      input,
		OutputMint:     output,
		AmountIn:       amount,
		Slippage:       cfg.Slippage,
		PlatformFeeBps: cfg.PlatformFeeBps,
	}, nil
}

func runRoute(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	req, err := routeRequest(cmd, e.cfg)
	if err != nil {
		return err
	}
	snap, pools, err := e.load()
	if err != nil {
		return err
	}
	quotes, err := e.client.Routes(snap, pools, req)
	if err != nil {
		return err
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		return printJSON(cmd.OutOrStdout(), quotes)
	}
	return printJSON(cmd.OutOrStdout(), quotes[0])
}

type tickView struct {
	Tick         int32           `json:"tick"`
	AlignedTick  int32           `json:"alignedTick"`
	SqrtPriceX64 string          `json:"sqrtPriceX64"`
	Price        decimal.Decimal `json:"price"`
}

func runTick(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	decimalsA, _ := flags.GetInt32("decimals-a")
	decimalsB, _ := flags.GetInt32("decimals-b")
	spacing, _ := flags.GetInt32("tick-spacing")

	var (
		t   int32
		err error
	)
	switch {
	case flags.Changed("price"):
		price, err := decimalFlag(cmd, "price")
		if err != nil {
			return err
		}
		if t, err = clmmmath.TickFromPrice(price, decimalsA, decimalsB); err != nil {
			return err
		}
	case flags.Changed("sqrt-price-x64"):
		raw, _ := flags.GetString("sqrt-price-x64")
		sqrtPrice, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return fmt.Errorf("invalid sqrt price %q", raw)
		}
		if t, err = clmmmath.TickFromSqrtPriceX64(sqrtPrice); err != nil {
			return err
		}
	default:
		t, _ = flags.GetInt32("tick")
	}

	sqrtPrice, err := clmmmath.SqrtPriceX64FromTick(t)
	if err != nil {
		return err
	}
	price := clmmmath.SqrtPriceX64ToPrice(sqrtPrice, decimalsA, decimalsB)
	aligned, err := clmmmath.TickFromPriceAligned(price, spacing, decimalsA, decimalsB)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), tickView{Tick: t, AlignedTick: aligned, SqrtPriceX64: sqrtPrice.String(), Price: price})
}

type accountView struct {
	PublicKey solana.PublicKey `json:"pubkey"`
	Signer    bool             `json:"signer"`
	Writable  bool             `json:"writable"`
}

type instructionView struct {
	ProgramID solana.PublicKey `json:"programId"`
	Accounts  []accountView    `json:"accounts"`
	Data      string           `json:"data"`
}

func runBuildSwap(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	owner, err := mintFlag(cmd, "owner")
	if err != nil {
		return err
	}
	req, err := routeRequest(cmd, e.cfg)
	if err != nil {
		return err
	}
	snap, pools, err := e.load()
	if err != nil {
		return err
	}
	q, err := e.client.QuoteSnapshot(snap, pools, req)
	if err != nil {
		return err
	}
	ixs, err := e.client.BuildSwap(q, owner, snap)
	if err != nil {
		return err
	}

	views := make([]instructionView, 0, len(ixs))
	for _, ix := range ixs {
		data, err := ix.Data()
		if err != nil {
			return err
		}
		view := instructionView{ProgramID: ix.ProgramID(), Data: base64.StdEncoding.EncodeToString(data)}
		for _, meta := range ix.Accounts() {
			view.Accounts = append(view.Accounts, accountView{PublicKey: meta.PublicKey, Signer: meta.IsSigner, Writable: meta.IsWritable})
		}
		views = append(views, view)
	}
	e.logger.Info("swap built", zap.Stringer("route", q.Route), zap.String("amountOut", q.AmountOut.String()), zap.Int("instructions", len(views)))
	return printJSON(cmd.OutOrStdout(), views)
}

// mintFlag parses a base58 public key flag.
func mintFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

func amountFlag(cmd *cobra.Command) (*big.Int, error) {
	raw, _ := cmd.Flags().GetString("amount")
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("--amount must be a positive integer, got %q", raw)
	}
	return amount, nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

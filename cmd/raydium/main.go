package main

import (
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "raydium",
		Short:        "Off-chain Raydium swap quotes and routes",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("rpc", "", "Solana RPC URL")
	flags.String("commitment", "confirmed", "RPC commitment")
	flags.Int("batch-size", 100, "accounts per getMultipleAccounts call")
	flags.Int("max-retries", 3, "maximum retry attempts")
	flags.Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	flags.Int("rps", 10, "RPC requests per second")
	flags.String("snapshot", "./data/snapshot.bin", "snapshot file path")
	flags.String("pools", "./data/pools.json", "pool list JSON path")
	flags.String("slippage", "0.005", "slippage tolerance as a fraction")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the accounts of every listed pool into a snapshot file",
		RunE:  runFetch,
	}
	fetchCmd.Flags().StringSlice("pool", nil, "only fetch these pool ids (comma-separated)")
	root.AddCommand(fetchCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap through one pool",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("pool", "", "pool id")
	quoteCmd.Flags().String("input", "", "input mint")
	quoteCmd.Flags().String("amount", "", "input amount in base units, or output amount with --base-out")
	quoteCmd.Flags().Bool("base-out", false, "treat --amount as the exact output")
	quoteCmd.Flags().String("price-limit", "0", "concentrated pools: stop at this price of token A in token B")
	root.AddCommand(quoteCmd)

	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Find the best one- or two-hop route",
		RunE:  runRoute,
	}
	addRouteFlags(routeCmd)
	routeCmd.Flags().Bool("all", false, "print every fillable route, best first")
	root.AddCommand(routeCmd)

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between tick, sqrt price and price",
		RunE:  runTick,
	}
	tickCmd.Flags().Int32("tick", 0, "tick index")
	tickCmd.Flags().String("price", "", "price of token A in token B")
	tickCmd.Flags().String("sqrt-price-x64", "", "Q64.64 sqrt price")
	tickCmd.Flags().Int32("decimals-a", 0, "token A decimals")
	tickCmd.Flags().Int32("decimals-b", 0, "token B decimals")
	tickCmd.Flags().Int32("tick-spacing", 1, "align the tick to this spacing")
	root.AddCommand(tickCmd)

	buildCmd := &cobra.Command{
		Use:   "build-swap",
		Short: "Route a swap and print its instructions",
		RunE:  runBuildSwap,
	}
	addRouteFlags(buildCmd)
	buildCmd.Flags().String("owner", "", "wallet that signs the swap")
	root.AddCommand(buildCmd)

	return root
}

func addRouteFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "input mint")
	cmd.Flags().String("output", "", "output mint")
	cmd.Flags().String("amount", "", "input amount in base units")
	cmd.Flags().Uint64("platform-fee-bps", 0, "platform fee withheld from the input")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

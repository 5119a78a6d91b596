package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	Commitment     string
	BatchSize      int
	MaxRetries     int
	RetryBackoff   time.Duration
	RequestsPerSec int
	Slippage       decimal.Decimal
	PlatformFeeBps uint64
	Snapshot       string
	PoolList       string
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
// Environment variables use the RAYDIUM_ prefix, e.g. RAYDIUM_RPC.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAYDIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", DefaultRPCURL)
	v.SetDefault("commitment", "confirmed")
	v.SetDefault("batch-size", 100)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("rps", 10)
	v.SetDefault("slippage", "0.005")
	v.SetDefault("platform-fee-bps", uint64(0))
	v.SetDefault("snapshot", "./data/snapshot.bin")
	v.SetDefault("pools", "./data/pools.json")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("raydium")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	slippage, err := decimal.NewFromString(v.GetString("slippage"))
	if err != nil {
		return nil, fmt.Errorf("slippage: %w", err)
	}

	cfg := &Config{
		RPCURL:         v.GetString("rpc"),
		Commitment:     v.GetString("commitment"),
		BatchSize:      v.GetInt("batch-size"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		RequestsPerSec: v.GetInt("rps"),
		Slippage:       slippage,
		PlatformFeeBps: v.GetUint64("platform-fee-bps"),
		Snapshot:       v.GetString("snapshot"),
		PoolList:       v.GetString("pools"),
		LogLevel:       v.GetString("log-level"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.BatchSize <= 0 || c.BatchSize > 100 {
		return fmt.Errorf("batch size %d out of range 1..100", c.BatchSize)
	}
	if c.Slippage.IsNegative() || c.Slippage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("slippage %s out of range [0, 1)", c.Slippage)
	}
	return nil
}

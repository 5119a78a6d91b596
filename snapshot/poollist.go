package snapshot

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"

	"github.com/krazyTry/raydium-go/shared"
)

// PoolInfo is the metadata of one pool from a Raydium pool list.
type PoolInfo struct {
	ID        solana.PublicKey
	ProgramID solana.PublicKey
	Version   shared.PoolVersion
	Official  bool

	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	BaseDecimals  uint8
	QuoteDecimals uint8

	// Legacy pools only.
	BaseVault       solana.PublicKey
	QuoteVault      solana.PublicKey
	MarketID        solana.PublicKey
	MarketProgramID solana.PublicKey

	// Concentrated pools only.
	AmmConfig   solana.PublicKey
	TickSpacing int32
}

// ParsePoolList reads a liquidity pool list ({"official": [...],
// "unOfficial": [...]}) or a concentrated pool list ({"data": [...]}).
// Entries of both shapes may appear in the same document.
// clmmProgramID is used for concentrated entries that carry no programId.
func ParsePoolList(data []byte, clmmProgramID solana.PublicKey) ([]*PoolInfo, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: pool list is not valid JSON", shared.ErrInvalidLayout)
	}
	doc := gjson.ParseBytes(data)

	var (
		pools []*PoolInfo
		err   error
	)
	for _, section := range []string{"official", "unOfficial"} {
		doc.Get(section).ForEach(func(_, v gjson.Result) bool {
			var info *PoolInfo
			if info, err = parseLiquidityPool(v, section == "official"); err != nil {
				return false
			}
			pools = append(pools, info)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	doc.Get("data").ForEach(func(_, v gjson.Result) bool {
		var info *PoolInfo
		if info, err = parseConcentratedPool(v, clmmProgramID); err != nil {
			return false
		}
		pools = append(pools, info)
		return true
	})
	if err != nil {
		return nil, err
	}
	return pools, nil
}

func parseLiquidityPool(v gjson.Result, official bool) (*PoolInfo, error) {
	id, err := publicKey(v, "id")
	if err != nil {
		return nil, err
	}
	version := shared.PoolVersion(v.Get("version").Int())
	if version != shared.PoolVersionV4 && version != shared.PoolVersionV5 {
		return nil, fmt.Errorf("%w: pool %s version %d", shared.ErrInvalidVersion, id, version)
	}
	info := &PoolInfo{ID: id, Version: version, Official: official}
	fields := []struct {
		path string
		dst  *solana.PublicKey
	}{
		{"programId", &info.ProgramID},
		{"baseMint", &info.BaseMint},
		{"quoteMint", &info.QuoteMint},
		{"baseVault", &info.BaseVault},
		{"quoteVault", &info.QuoteVault},
		{"marketId", &info.MarketID},
		{"marketProgramId", &info.MarketProgramID},
	}
	for _, f := range fields {
		if *f.dst, err = publicKey(v, f.path); err != nil {
			return nil, fmt.Errorf("pool %s: %w", id, err)
		}
	}
	if info.BaseDecimals, err = decimals(v, "baseDecimals"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	if info.QuoteDecimals, err = decimals(v, "quoteDecimals"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	return info, nil
}

func parseConcentratedPool(v gjson.Result, programID solana.PublicKey) (*PoolInfo, error) {
	id, err := publicKey(v, "id")
	if err != nil {
		return nil, err
	}
	info := &PoolInfo{ID: id, ProgramID: programID, Version: shared.PoolVersionClmm, Official: true}
	if v.Get("programId").Exists() {
		if info.ProgramID, err = publicKey(v, "programId"); err != nil {
			return nil, fmt.Errorf("pool %s: %w", id, err)
		}
	}
	if info.BaseMint, err = publicKey(v, "mintA"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	if info.QuoteMint, err = publicKey(v, "mintB"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	if info.BaseDecimals, err = decimals(v, "mintDecimalsA"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	if info.QuoteDecimals, err = decimals(v, "mintDecimalsB"); err != nil {
		return nil, fmt.Errorf("pool %s: %w", id, err)
	}
	if cfg := v.Get("ammConfig"); cfg.Exists() {
		if info.AmmConfig, err = publicKey(cfg, "id"); err != nil {
			return nil, fmt.Errorf("pool %s: %w", id, err)
		}
		info.TickSpacing = int32(cfg.Get("tickSpacing").Int())
	}
	return info, nil
}

func publicKey(v gjson.Result, path string) (solana.PublicKey, error) {
	field := v.Get(path)
	if !field.Exists() {
		return solana.PublicKey{}, fmt.Errorf("%w: missing %s", shared.ErrInvalidLayout, path)
	}
	key, err := solana.PublicKeyFromBase58(field.String())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s: %v", shared.ErrInvalidLayout, path, err)
	}
	return key, nil
}

func decimals(v gjson.Result, path string) (uint8, error) {
	field := v.Get(path)
	if !field.Exists() {
		return 0, fmt.Errorf("%w: missing %s", shared.ErrInvalidLayout, path)
	}
	d := field.Int()
	if d < 0 || d > 18 {
		return 0, fmt.Errorf("%w: %s = %d", shared.ErrRange, path, d)
	}
	return uint8(d), nil
}

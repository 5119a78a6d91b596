package amm

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/raydium-go/amm/stable"
	"github.com/krazyTry/raydium-go/shared"
	solanago "github.com/krazyTry/raydium-go/solana"
)

// Curve selects the pricing function of a legacy pool.
type Curve uint8

const (
	CurveConstantProduct Curve = 0
	CurveStable          Curve = 1
)

func (c Curve) String() string {
	switch c {
	case CurveConstantProduct:
		return "constant-product"
	case CurveStable:
		return "stable"
	}
	return "unknown"
}

// Pool is a legacy AMM pool with reserves taken from its vaults.
type Pool struct {
	ID        solana.PublicKey
	ProgramID solana.PublicKey
	Version   shared.PoolVersion
	Curve     Curve

	BaseMint      solana.PublicKey
	QuoteMint     solana.PublicKey
	BaseDecimals  uint8
	QuoteDecimals uint8

	// Reserves are the vault balances minus the PnL owed to the pool owner.
	BaseReserve  *big.Int
	QuoteReserve *big.Int
	LpSupply     *big.Int

	SwapFeeNumerator   uint64
	SwapFeeDenominator uint64

	// Model is set for stable pools only.
	Model *stable.Model

	Info LiquidityInfo
}

// NewPool builds a Pool from its state and the two vault accounts. model
// must be non-nil for a stable pool.
func NewPool(id solana.PublicKey, state LiquidityState, baseVault, quoteVault *solanago.Account, model *stable.Model) (*Pool, error) {
	if state == nil || baseVault == nil || quoteVault == nil {
		return nil, fmt.Errorf("%w: pool %s needs its state and both vaults", shared.ErrPoolNotFound, id)
	}
	info := state.Info()
	if !baseVault.Address.Equals(info.BaseVault) || !quoteVault.Address.Equals(info.QuoteVault) {
		return nil, fmt.Errorf("%w: vaults %s/%s do not belong to pool %s", shared.ErrPoolNotFound, baseVault.Address, quoteVault.Address, id)
	}
	if info.Fees.SwapFeeDenominator == 0 || info.Fees.SwapFeeNumerator >= info.Fees.SwapFeeDenominator {
		return nil, fmt.Errorf("%w: pool %s swap fee %d/%d", shared.ErrRange, id, info.Fees.SwapFeeNumerator, info.Fees.SwapFeeDenominator)
	}
	programID, err := ProgramIDFor(state.Version())
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		ID:                 id,
		ProgramID:          programID,
		Version:            state.Version(),
		Curve:              CurveConstantProduct,
		BaseMint:           info.BaseMint,
		QuoteMint:          info.QuoteMint,
		BaseDecimals:       uint8(info.BaseDecimal),
		QuoteDecimals:      uint8(info.QuoteDecimal),
		BaseReserve:        reserve(baseVault.Amount, info.BaseNeedTakePnl),
		QuoteReserve:       reserve(quoteVault.Amount, info.QuoteNeedTakePnl),
		LpSupply:           new(big.Int).SetUint64(info.LpReserve),
		SwapFeeNumerator:   info.Fees.SwapFeeNumerator,
		SwapFeeDenominator: info.Fees.SwapFeeDenominator,
		Info:               info,
	}
	if state.Version() == shared.PoolVersionV5 {
		if model == nil {
			return nil, fmt.Errorf("%w: stable pool %s needs model data %s", shared.ErrPoolNotFound, id, stable.ModelDataPubkey)
		}
		pool.Curve = CurveStable
		pool.Model = model
	}
	return pool, nil
}

func reserve(balance, pnl uint64) *big.Int {
	if pnl >= balance {
		return big.NewInt(0)
	}
	return new(big.Int).SetUint64(balance - pnl)
}

// HasMint reports whether mint is one side of the pool.
func (p *Pool) HasMint(mint solana.PublicKey) bool {
	return p.BaseMint.Equals(mint) || p.QuoteMint.Equals(mint)
}

// BaseIn reports whether selling inputMint moves base into the pool.
func (p *Pool) BaseIn(inputMint solana.PublicKey) (bool, error) {
	switch {
	case inputMint.Equals(p.BaseMint):
		return true, nil
	case inputMint.Equals(p.QuoteMint):
		return false, nil
	}
	return false, fmt.Errorf("%w: %s is not a mint of pool %s", shared.ErrTokenNotFound, inputMint, p.ID)
}

// reserves returns the input and output reserves and decimals for a swap direction.
func (p *Pool) reserves(baseIn bool) (reserveIn, reserveOut *big.Int, decimalsIn, decimalsOut int32) {
	if baseIn {
		return p.BaseReserve, p.QuoteReserve, int32(p.BaseDecimals), int32(p.QuoteDecimals)
	}
	return p.QuoteReserve, p.BaseReserve, int32(p.QuoteDecimals), int32(p.BaseDecimals)
}

// CurrentPrice is the spot price as output per input, in human units.
func (p *Pool) CurrentPrice(baseIn bool) (decimal.Decimal, error) {
	reserveIn, reserveOut, decimalsIn, decimalsOut := p.reserves(baseIn)
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return decimal.Zero, fmt.Errorf("%w: pool %s has an empty reserve", shared.ErrInsufficientLiquidity, p.ID)
	}
	if p.Curve == CurveStable {
		price, err := p.Model.Price(bigToFloat(p.BaseReserve), bigToFloat(p.QuoteReserve), !baseIn)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(price).Shift(decimalsIn - decimalsOut), nil
	}
	return humanRatio(reserveOut, reserveIn, decimalsIn, decimalsOut), nil
}

// humanRatio returns (out / 10^decimalsOut) / (in / 10^decimalsIn).
func humanRatio(out, in *big.Int, decimalsIn, decimalsOut int32) decimal.Decimal {
	if in.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(out, 0).
		DivRound(decimal.NewFromBigInt(in, 0), 36).
		Shift(decimalsIn - decimalsOut)
}

func bigToFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

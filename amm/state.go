package amm

import (
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/krazyTry/raydium-go/layout"
	"github.com/krazyTry/raydium-go/shared"
)

const (
	LiquidityStateV4Size = 752
	LiquidityStateV5Size = 1232
	MarketStateV3Size    = 388
)

// Fees is the fee block shared by both pool versions.
type Fees struct {
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
}

func (obj *Fees) read(r *layout.Reader) {
	obj.MinSeparateNumerator = r.U64()
	obj.MinSeparateDenominator = r.U64()
	obj.TradeFeeNumerator = r.U64()
	obj.TradeFeeDenominator = r.U64()
	obj.PnlNumerator = r.U64()
	obj.PnlDenominator = r.U64()
	obj.SwapFeeNumerator = r.U64()
	obj.SwapFeeDenominator = r.U64()
}

func (obj *Fees) write(w *layout.Writer) {
	w.U64(obj.MinSeparateNumerator)
	w.U64(obj.MinSeparateDenominator)
	w.U64(obj.TradeFeeNumerator)
	w.U64(obj.TradeFeeDenominator)
	w.U64(obj.PnlNumerator)
	w.U64(obj.PnlDenominator)
	w.U64(obj.SwapFeeNumerator)
	w.U64(obj.SwapFeeDenominator)
}

// LiquidityInfo holds the fields a quote or a swap needs, whatever the
// pool version.
type LiquidityInfo struct {
	Status           uint64
	Nonce            uint64
	BaseDecimal      uint64
	QuoteDecimal     uint64
	Fees             Fees
	BaseNeedTakePnl  uint64
	QuoteNeedTakePnl uint64
	PoolOpenTime     uint64
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	LpMint           solana.PublicKey
	OpenOrders       solana.PublicKey
	MarketID         solana.PublicKey
	MarketProgramID  solana.PublicKey
	TargetOrders     solana.PublicKey
	ModelDataAccount solana.PublicKey
	LpReserve        uint64
}

// LiquidityState is a decoded legacy pool account.
type LiquidityState interface {
	layout.Schema
	Version() shared.PoolVersion
	Info() LiquidityInfo
}

// DecodeLiquidityState selects the schema by pool version.
func DecodeLiquidityState(version shared.PoolVersion, data []byte) (LiquidityState, error) {
	var state LiquidityState
	switch version {
	case shared.PoolVersionV4:
		state = &LiquidityStateV4{}
	case shared.PoolVersionV5:
		state = &LiquidityStateV5{}
	default:
		return nil, fmt.Errorf("%w: legacy pool version %d", shared.ErrInvalidVersion, version)
	}
	if err := layout.Decode(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// LiquidityStateV4 is the constant product pool account.
type LiquidityStateV4 struct {
	Status              uint64
	Nonce               uint64
	MaxOrder            uint64
	Depth               uint64
	BaseDecimal         uint64
	QuoteDecimal        uint64
	State               uint64
	ResetFlag           uint64
	MinSize             uint64
	VolMaxCutRatio      uint64
	AmountWaveRatio     uint64
	BaseLotSize         uint64
	QuoteLotSize        uint64
	MinPriceMultiplier  uint64
	MaxPriceMultiplier  uint64
	SystemDecimalValue  uint64
	Fees                Fees
	BaseNeedTakePnl     uint64
	QuoteNeedTakePnl    uint64
	QuoteTotalPnl       uint64
	BaseTotalPnl        uint64
	PoolOpenTime        uint64
	PunishPcAmount      uint64
	PunishCoinAmount    uint64
	OrderbookToInitTime uint64
	SwapBaseInAmount    binary.Uint128
	SwapQuoteOutAmount  binary.Uint128
	SwapBase2QuoteFee   uint64
	SwapQuoteInAmount   binary.Uint128
	SwapBaseOutAmount   binary.Uint128
	SwapQuote2BaseFee   uint64
	BaseVault           solana.PublicKey
	QuoteVault          solana.PublicKey
	BaseMint            solana.PublicKey
	QuoteMint           solana.PublicKey
	LpMint              solana.PublicKey
	OpenOrders          solana.PublicKey
	MarketID            solana.PublicKey
	MarketProgramID     solana.PublicKey
	TargetOrders        solana.PublicKey
	WithdrawQueue       solana.PublicKey
	LpVault             solana.PublicKey
	Owner               solana.PublicKey
	LpReserve           uint64
}

func (*LiquidityStateV4) Span() int { return LiquidityStateV4Size }

func (*LiquidityStateV4) Version() shared.PoolVersion { return shared.PoolVersionV4 }

func (obj *LiquidityStateV4) Info() LiquidityInfo {
	return LiquidityInfo{
		Status:           obj.Status,
		Nonce:            obj.Nonce,
		BaseDecimal:      obj.BaseDecimal,
		QuoteDecimal:     obj.QuoteDecimal,
		Fees:             obj.Fees,
		BaseNeedTakePnl:  obj.BaseNeedTakePnl,
		QuoteNeedTakePnl: obj.QuoteNeedTakePnl,
		PoolOpenTime:     obj.PoolOpenTime,
		BaseVault:        obj.BaseVault,
		QuoteVault:       obj.QuoteVault,
		BaseMint:         obj.BaseMint,
		QuoteMint:        obj.QuoteMint,
		LpMint:           obj.LpMint,
		OpenOrders:       obj.OpenOrders,
		MarketID:         obj.MarketID,
		MarketProgramID:  obj.MarketProgramID,
		TargetOrders:     obj.TargetOrders,
		LpReserve:        obj.LpReserve,
	}
}

func (obj *LiquidityStateV4) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.Status = r.U64()
	obj.Nonce = r.U64()
	obj.MaxOrder = r.U64()
	obj.Depth = r.U64()
	obj.BaseDecimal = r.U64()
	obj.QuoteDecimal = r.U64()
	obj.State = r.U64()
	obj.ResetFlag = r.U64()
	obj.MinSize = r.U64()
	obj.VolMaxCutRatio = r.U64()
	obj.AmountWaveRatio = r.U64()
	obj.BaseLotSize = r.U64()
	obj.QuoteLotSize = r.U64()
	obj.MinPriceMultiplier = r.U64()
	obj.MaxPriceMultiplier = r.U64()
	obj.SystemDecimalValue = r.U64()
	obj.Fees.read(r)
	obj.BaseNeedTakePnl = r.U64()
	obj.QuoteNeedTakePnl = r.U64()
	obj.QuoteTotalPnl = r.U64()
	obj.BaseTotalPnl = r.U64()
	obj.PoolOpenTime = r.U64()
	obj.PunishPcAmount = r.U64()
	obj.PunishCoinAmount = r.U64()
	obj.OrderbookToInitTime = r.U64()
	obj.SwapBaseInAmount = r.U128()
	obj.SwapQuoteOutAmount = r.U128()
	obj.SwapBase2QuoteFee = r.U64()
	obj.SwapQuoteInAmount = r.U128()
	obj.SwapBaseOutAmount = r.U128()
	obj.SwapQuote2BaseFee = r.U64()
	obj.BaseVault = r.PublicKey()
	obj.QuoteVault = r.PublicKey()
	obj.BaseMint = r.PublicKey()
	obj.QuoteMint = r.PublicKey()
	obj.LpMint = r.PublicKey()
	obj.OpenOrders = r.PublicKey()
	obj.MarketID = r.PublicKey()
	obj.MarketProgramID = r.PublicKey()
	obj.TargetOrders = r.PublicKey()
	obj.WithdrawQueue = r.PublicKey()
	obj.LpVault = r.PublicKey()
	obj.Owner = r.PublicKey()
	obj.LpReserve = r.U64()
	r.Skip(3 * 8)
	return r.Err()
}

func (obj *LiquidityStateV4) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.Status)
	w.U64(obj.Nonce)
	w.U64(obj.MaxOrder)
	w.U64(obj.Depth)
	w.U64(obj.BaseDecimal)
	w.U64(obj.QuoteDecimal)
	w.U64(obj.State)
	w.U64(obj.ResetFlag)
	w.U64(obj.MinSize)
	w.U64(obj.VolMaxCutRatio)
	w.U64(obj.AmountWaveRatio)
	w.U64(obj.BaseLotSize)
	w.U64(obj.QuoteLotSize)
	w.U64(obj.MinPriceMultiplier)
	w.U64(obj.MaxPriceMultiplier)
	w.U64(obj.SystemDecimalValue)
	obj.Fees.write(w)
	w.U64(obj.BaseNeedTakePnl)
	w.U64(obj.QuoteNeedTakePnl)
	w.U64(obj.QuoteTotalPnl)
	w.U64(obj.BaseTotalPnl)
	w.U64(obj.PoolOpenTime)
	w.U64(obj.PunishPcAmount)
	w.U64(obj.PunishCoinAmount)
	w.U64(obj.OrderbookToInitTime)
	w.U128(obj.SwapBaseInAmount)
	w.U128(obj.SwapQuoteOutAmount)
	w.U64(obj.SwapBase2QuoteFee)
	w.U128(obj.SwapQuoteInAmount)
	w.U128(obj.SwapBaseOutAmount)
	w.U64(obj.SwapQuote2BaseFee)
	w.PublicKey(obj.BaseVault)
	w.PublicKey(obj.QuoteVault)
	w.PublicKey(obj.BaseMint)
	w.PublicKey(obj.QuoteMint)
	w.PublicKey(obj.LpMint)
	w.PublicKey(obj.OpenOrders)
	w.PublicKey(obj.MarketID)
	w.PublicKey(obj.MarketProgramID)
	w.PublicKey(obj.TargetOrders)
	w.PublicKey(obj.WithdrawQueue)
	w.PublicKey(obj.LpVault)
	w.PublicKey(obj.Owner)
	w.U64(obj.LpReserve)
	w.Zero(3 * 8)
	return w.Err()
}

// LiquidityStateV5 is the stable pool account.
type LiquidityStateV5 struct {
	AccountType         uint64
	Status              uint64
	Nonce               uint64
	MaxOrder            uint64
	Depth               uint64
	BaseDecimal         uint64
	QuoteDecimal        uint64
	State               uint64
	ResetFlag           uint64
	MinSize             uint64
	VolMaxCutRatio      uint64
	AmountWaveRatio     uint64
	BaseLotSize         uint64
	QuoteLotSize        uint64
	MinPriceMultiplier  uint64
	MaxPriceMultiplier  uint64
	SystemDecimalsValue uint64
	AbortTradeFactor    uint64
	PriceTickMultiplier uint64
	PriceTick           uint64
	Fees                Fees
	BaseNeedTakePnl     uint64
	QuoteNeedTakePnl    uint64
	QuoteTotalPnl       uint64
	BaseTotalPnl        uint64
	PoolOpenTime        uint64
	PunishPcAmount      uint64
	PunishCoinAmount    uint64
	OrderbookToInitTime uint64
	SwapBaseInAmount    binary.Uint128
	SwapQuoteOutAmount  binary.Uint128
	SwapQuoteInAmount   binary.Uint128
	SwapBaseOutAmount   binary.Uint128
	SwapQuote2BaseFee   uint64
	SwapBase2QuoteFee   uint64
	BaseVault           solana.PublicKey
	QuoteVault          solana.PublicKey
	BaseMint            solana.PublicKey
	QuoteMint           solana.PublicKey
	LpMint              solana.PublicKey
	ModelDataAccount    solana.PublicKey
	OpenOrders          solana.PublicKey
	MarketID            solana.PublicKey
	MarketProgramID     solana.PublicKey
	TargetOrders        solana.PublicKey
	Owner               solana.PublicKey
}

func (*LiquidityStateV5) Span() int { return LiquidityStateV5Size }

func (*LiquidityStateV5) Version() shared.PoolVersion { return shared.PoolVersionV5 }

func (obj *LiquidityStateV5) Info() LiquidityInfo {
	return LiquidityInfo{
		Status:           obj.Status,
		Nonce:            obj.Nonce,
		BaseDecimal:      obj.BaseDecimal,
		QuoteDecimal:     obj.QuoteDecimal,
		Fees:             obj.Fees,
		BaseNeedTakePnl:  obj.BaseNeedTakePnl,
		QuoteNeedTakePnl: obj.QuoteNeedTakePnl,
		PoolOpenTime:     obj.PoolOpenTime,
		BaseVault:        obj.BaseVault,
		QuoteVault:       obj.QuoteVault,
		BaseMint:         obj.BaseMint,
		QuoteMint:        obj.QuoteMint,
		LpMint:           obj.LpMint,
		OpenOrders:       obj.OpenOrders,
		MarketID:         obj.MarketID,
		MarketProgramID:  obj.MarketProgramID,
		TargetOrders:     obj.TargetOrders,
		ModelDataAccount: obj.ModelDataAccount,
	}
}

func (obj *LiquidityStateV5) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	obj.AccountType = r.U64()
	obj.Status = r.U64()
	obj.Nonce = r.U64()
	obj.MaxOrder = r.U64()
	obj.Depth = r.U64()
	obj.BaseDecimal = r.U64()
	obj.QuoteDecimal = r.U64()
	obj.State = r.U64()
	obj.ResetFlag = r.U64()
	obj.MinSize = r.U64()
	obj.VolMaxCutRatio = r.U64()
	obj.AmountWaveRatio = r.U64()
	obj.BaseLotSize = r.U64()
	obj.QuoteLotSize = r.U64()
	obj.MinPriceMultiplier = r.U64()
	obj.MaxPriceMultiplier = r.U64()
	obj.SystemDecimalsValue = r.U64()
	obj.AbortTradeFactor = r.U64()
	obj.PriceTickMultiplier = r.U64()
	obj.PriceTick = r.U64()
	obj.Fees.read(r)
	obj.BaseNeedTakePnl = r.U64()
	obj.QuoteNeedTakePnl = r.U64()
	obj.QuoteTotalPnl = r.U64()
	obj.BaseTotalPnl = r.U64()
	obj.PoolOpenTime = r.U64()
	obj.PunishPcAmount = r.U64()
	obj.PunishCoinAmount = r.U64()
	obj.OrderbookToInitTime = r.U64()
	obj.SwapBaseInAmount = r.U128()
	obj.SwapQuoteOutAmount = r.U128()
	obj.SwapQuoteInAmount = r.U128()
	obj.SwapBaseOutAmount = r.U128()
	obj.SwapQuote2BaseFee = r.U64()
	obj.SwapBase2QuoteFee = r.U64()
	obj.BaseVault = r.PublicKey()
	obj.QuoteVault = r.PublicKey()
	obj.BaseMint = r.PublicKey()
	obj.QuoteMint = r.PublicKey()
	obj.LpMint = r.PublicKey()
	obj.ModelDataAccount = r.PublicKey()
	obj.OpenOrders = r.PublicKey()
	obj.MarketID = r.PublicKey()
	obj.MarketProgramID = r.PublicKey()
	obj.TargetOrders = r.PublicKey()
	obj.Owner = r.PublicKey()
	r.Skip(64 * 8)
	return r.Err()
}

func (obj *LiquidityStateV5) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.U64(obj.AccountType)
	w.U64(obj.Status)
	w.U64(obj.Nonce)
	w.U64(obj.MaxOrder)
	w.U64(obj.Depth)
	w.U64(obj.BaseDecimal)
	w.U64(obj.QuoteDecimal)
	w.U64(obj.State)
	w.U64(obj.ResetFlag)
	w.U64(obj.MinSize)
	w.U64(obj.VolMaxCutRatio)
	w.U64(obj.AmountWaveRatio)
	w.U64(obj.BaseLotSize)
	w.U64(obj.QuoteLotSize)
	w.U64(obj.MinPriceMultiplier)
	w.U64(obj.MaxPriceMultiplier)
	w.U64(obj.SystemDecimalsValue)
	w.U64(obj.AbortTradeFactor)
	w.U64(obj.PriceTickMultiplier)
	w.U64(obj.PriceTick)
	obj.Fees.write(w)
	w.U64(obj.BaseNeedTakePnl)
	w.U64(obj.QuoteNeedTakePnl)
	w.U64(obj.QuoteTotalPnl)
	w.U64(obj.BaseTotalPnl)
	w.U64(obj.PoolOpenTime)
	w.U64(obj.PunishPcAmount)
	w.U64(obj.PunishCoinAmount)
	w.U64(obj.OrderbookToInitTime)
	w.U128(obj.SwapBaseInAmount)
	w.U128(obj.SwapQuoteOutAmount)
	w.U128(obj.SwapQuoteInAmount)
	w.U128(obj.SwapBaseOutAmount)
	w.U64(obj.SwapQuote2BaseFee)
	w.U64(obj.SwapBase2QuoteFee)
	w.PublicKey(obj.BaseVault)
	w.PublicKey(obj.QuoteVault)
	w.PublicKey(obj.BaseMint)
	w.PublicKey(obj.QuoteMint)
	w.PublicKey(obj.LpMint)
	w.PublicKey(obj.ModelDataAccount)
	w.PublicKey(obj.OpenOrders)
	w.PublicKey(obj.MarketID)
	w.PublicKey(obj.MarketProgramID)
	w.PublicKey(obj.TargetOrders)
	w.PublicKey(obj.Owner)
	w.Zero(64 * 8)
	return w.Err()
}

// MarketStateV3 is the order book market a legacy pool is attached to.
type MarketStateV3 struct {
	AccountFlags           uint64
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	BaseMint               solana.PublicKey
	QuoteMint              solana.PublicKey
	BaseVault              solana.PublicKey
	BaseDepositsTotal      uint64
	BaseFeesAccrued        uint64
	QuoteVault             solana.PublicKey
	QuoteDepositsTotal     uint64
	QuoteFeesAccrued       uint64
	QuoteDustThreshold     uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	BaseLotSize            uint64
	QuoteLotSize           uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
}

var marketHead = []byte("serum")

func (*MarketStateV3) Span() int { return MarketStateV3Size }

func (obj *MarketStateV3) UnmarshalWithDecoder(decoder *binary.Decoder) error {
	r := layout.NewReader(decoder)
	r.Skip(len(marketHead))
	obj.AccountFlags = r.U64()
	obj.OwnAddress = r.PublicKey()
	obj.VaultSignerNonce = r.U64()
	obj.BaseMint = r.PublicKey()
	obj.QuoteMint = r.PublicKey()
	obj.BaseVault = r.PublicKey()
	obj.BaseDepositsTotal = r.U64()
	obj.BaseFeesAccrued = r.U64()
	obj.QuoteVault = r.PublicKey()
	obj.QuoteDepositsTotal = r.U64()
	obj.QuoteFeesAccrued = r.U64()
	obj.QuoteDustThreshold = r.U64()
	obj.RequestQueue = r.PublicKey()
	obj.EventQueue = r.PublicKey()
	obj.Bids = r.PublicKey()
	obj.Asks = r.PublicKey()
	obj.BaseLotSize = r.U64()
	obj.QuoteLotSize = r.U64()
	obj.FeeRateBps = r.U64()
	obj.ReferrerRebatesAccrued = r.U64()
	r.Skip(7)
	return r.Err()
}

func (obj *MarketStateV3) MarshalWithEncoder(encoder *binary.Encoder) error {
	w := layout.NewWriter(encoder)
	w.Blob(marketHead, len(marketHead))
	w.U64(obj.AccountFlags)
	w.PublicKey(obj.OwnAddress)
	w.U64(obj.VaultSignerNonce)
	w.PublicKey(obj.BaseMint)
	w.PublicKey(obj.QuoteMint)
	w.PublicKey(obj.BaseVault)
	w.U64(obj.BaseDepositsTotal)
	w.U64(obj.BaseFeesAccrued)
	w.PublicKey(obj.QuoteVault)
	w.U64(obj.QuoteDepositsTotal)
	w.U64(obj.QuoteFeesAccrued)
	w.U64(obj.QuoteDustThreshold)
	w.PublicKey(obj.RequestQueue)
	w.PublicKey(obj.EventQueue)
	w.PublicKey(obj.Bids)
	w.PublicKey(obj.Asks)
	w.U64(obj.BaseLotSize)
	w.U64(obj.QuoteLotSize)
	w.U64(obj.FeeRateBps)
	w.U64(obj.ReferrerRebatesAccrued)
	w.Blob([]byte("padding"), 7)
	return w.Err()
}

// DecodeMarketState decodes a MarketStateV3 account.
func DecodeMarketState(data []byte) (*MarketStateV3, error) {
	m := &MarketStateV3{}
	if err := layout.Decode(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// VaultSigner derives the market's vault signer from its stored nonce.
func (obj *MarketStateV3) VaultSigner(marketID, marketProgramID solana.PublicKey) (solana.PublicKey, error) {
	nonce := make([]byte, 8)
	layout.LE.PutUint64(nonce, obj.VaultSignerNonce)
	return solana.CreateProgramAddress([][]byte{marketID.Bytes(), nonce}, marketProgramID)
}

// FindVaultSigner searches the first nonce below 100 that gives a valid
// vault signer for marketID.
func FindVaultSigner(marketID, marketProgramID solana.PublicKey) (solana.PublicKey, uint64, error) {
	m := &MarketStateV3{}
	for nonce := uint64(0); nonce < 100; nonce++ {
		m.VaultSignerNonce = nonce
		signer, err := m.VaultSigner(marketID, marketProgramID)
		if err == nil {
			return signer, nonce, nil
		}
	}
	return solana.PublicKey{}, 0, fmt.Errorf("no vault signer nonce for market %s", marketID)
}

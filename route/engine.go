// Package route finds and prices one- and two-hop swap routes over
// concentrated and legacy pools.
package route

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/krazyTry/raydium-go/shared"
)

// BpsDenominator is the denominator of platform fees.
const BpsDenominator = 10_000

// Request describes a swap to route.
type Request struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   *big.Int
	Slippage   decimal.Decimal
	// PlatformFeeBps is withheld from AmountIn before routing.
	PlatformFeeBps uint64
}

func (r *Request) validate() error {
	if r.InputMint.Equals(r.OutputMint) {
		return fmt.Errorf("%w: input and output mint are both %s", shared.ErrRange, r.InputMint)
	}
	if r.AmountIn == nil || r.AmountIn.Sign() <= 0 {
		return fmt.Errorf("%w: amount in must be positive", shared.ErrRange)
	}
	if r.Slippage.IsNegative() || r.Slippage.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: slippage %s must be in [0, 1)", shared.ErrRange, r.Slippage)
	}
	if r.PlatformFeeBps >= BpsDenominator {
		return fmt.Errorf("%w: platform fee %d bps", shared.ErrRange, r.PlatformFeeBps)
	}
	return nil
}

// Engine evaluates route candidates. It holds no pool state and may be
// shared between goroutines.
type Engine struct {
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger excluded candidates are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type candidate []Pool

func (c candidate) String() string {
	s := ""
	for i, p := range c {
		if i > 0 {
			s += " -> "
		}
		s += p.Kind() + ":" + p.ID().String()
	}
	return s
}

// candidates lists direct pools first, then two-hop pairs through every
// intermediate mint, all in the order of pools.
func candidates(input, output solana.PublicKey, pools []Pool) []candidate {
	var direct, twoHop []candidate
	for _, p := range pools {
		if hasMint(p, input) && hasMint(p, output) {
			direct = append(direct, candidate{p})
		}
	}
	for _, first := range pools {
		if !hasMint(first, input) || hasMint(first, output) {
			continue
		}
		middle := otherMint(first, input)
		for _, second := range pools {
			if second == first || second.ID().Equals(first.ID()) {
				continue
			}
			if hasMint(second, middle) && hasMint(second, output) {
				twoHop = append(twoHop, candidate{first, second})
			}
		}
	}
	return append(direct, twoHop...)
}

// Quotes prices every candidate route and returns the fillable ones, best
// first. Candidates that fail or fill partially are left out.
func (e *Engine) Quotes(req *Request, pools []Pool) ([]*Quote, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	platformFee := new(big.Int).Mul(req.AmountIn, new(big.Int).SetUint64(req.PlatformFeeBps))
	platformFee.Quo(platformFee, big.NewInt(BpsDenominator))
	routed := new(big.Int).Sub(req.AmountIn, platformFee)
	if routed.Sign() <= 0 {
		return nil, fmt.Errorf("%w: nothing left to route after platform fee", shared.ErrRange)
	}

	var quotes []*Quote
	for _, c := range candidates(req.InputMint, req.OutputMint, pools) {
		q, err := e.evaluate(req, c, routed)
		if err != nil {
			e.logger.Debug("route candidate excluded", zap.Stringer("route", c), zap.Error(err))
			continue
		}
		q.PlatformFee = platformFee
		quotes = append(quotes, q)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: %s -> %s over %d pools", shared.ErrNoRouteFound, req.InputMint, req.OutputMint, len(pools))
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].AmountOut.Cmp(quotes[j].AmountOut) > 0
	})
	e.logger.Debug("routes priced",
		zap.Int("candidates", len(quotes)),
		zap.Stringer("best", quotes[0].Route),
		zap.String("amountOut", quotes[0].AmountOut.String()),
	)
	return quotes, nil
}

// Best returns the quote with the largest output.
func (e *Engine) Best(req *Request, pools []Pool) (*Quote, error) {
	quotes, err := e.Quotes(req, pools)
	if err != nil {
		return nil, err
	}
	return quotes[0], nil
}

func (e *Engine) evaluate(req *Request, c candidate, amountIn *big.Int) (*Quote, error) {
	var (
		hops      = make([]*Hop, 0, len(c))
		input     = req.InputMint
		amount    = amountIn
		execution = decimal.NewFromInt(1)
		current   = decimal.NewFromInt(1)
		impact    = decimal.Zero
		fees      = make([]*big.Int, 0, len(c))
	)
	for i, p := range c {
		hop, err := p.quote(input, amount, req.Slippage)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}
		if !hop.AllTrade {
			return nil, fmt.Errorf("%w: hop %d fills %s of %s", shared.ErrInsufficientLiquidity, i, hop.AmountIn, amount)
		}
		if hop.AmountOut.Sign() == 0 {
			return nil, fmt.Errorf("%w: hop %d returns nothing", shared.ErrInsufficientLiquidity, i)
		}
		hops = append(hops, hop)
		fees = append(fees, hop.Fee)
		execution = execution.Mul(hop.ExecutionPrice)
		current = current.Mul(hop.CurrentPrice)
		impact = impact.Add(hop.PriceImpact)

		input = hop.OutputMint
		amount = hop.AmountOut
	}
	if !input.Equals(req.OutputMint) {
		return nil, fmt.Errorf("%w: route ends at %s", shared.ErrTokenNotFound, input)
	}

	return &Quote{
		InputMint:      req.InputMint,
		OutputMint:     req.OutputMint,
		AmountIn:       req.AmountIn,
		AmountOut:      amount,
		MinAmountOut:   shared.MinAmountWithSlippage(amount, req.Slippage),
		Slippage:       req.Slippage,
		ExecutionPrice: execution,
		CurrentPrice:   current,
		PriceImpact:    impact,
		FeePerHop:      fees,
		Route:          &Route{Hops: hops},
		AllTrade:       true,
	}, nil
}

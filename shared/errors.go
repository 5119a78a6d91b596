package shared

import "errors"

var (
	// ErrInvalidLayout is returned when a buffer is shorter than the static span of its schema.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrUnknownTag is returned when a union discriminator has no registered variant.
	ErrUnknownTag = errors.New("unknown tag")
	// ErrInvalidVersion is returned for an unsupported pool or account version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrRange is returned for a tick or price outside the supported bounds.
	ErrRange = errors.New("out of range")
	// ErrInsufficientLiquidity is returned when a requested fill exceeds the available tick or curve data.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrBisectionNotBracketed is returned when a stable curve search cannot bracket the query.
	ErrBisectionNotBracketed = errors.New("bisection not bracketed")
	ErrPoolNotFound          = errors.New("pool not found")
	ErrTokenNotFound         = errors.New("token not found")
	// ErrNoRouteFound is returned when every route candidate failed.
	ErrNoRouteFound = errors.New("no route found")
)

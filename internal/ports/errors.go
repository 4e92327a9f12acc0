package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// Validation errors. Raised before any side effect and never retried
	// automatically; the caller is expected to correct the input.
	ErrInvalidInput         = errors.New("invalid input parameters or format")
	ErrInvalidStopPlacement = errors.New("stop-loss price must be below entry price")
	ErrDegenerateSize       = errors.New("risk budget too small for a single share at this stop distance")

	// Lookup errors.
	ErrNotFound = errors.New("trade not found or not open")

	// Store specific errors. Surfaced as-is; retrying is a caller decision.
	ErrPersistence  = errors.New("persistent store operation failed")
	ErrDBConnection = errors.New("database connection error")

	// Price feed specific errors. All of them degrade a single position
	// during valuation; none is ever fatal.
	ErrFeedUnavailable  = errors.New("price feed is unavailable")
	ErrRateLimited      = errors.New("price feed request quota exceeded")
	ErrQuoteUnavailable = errors.New("no quote available for symbol")
)

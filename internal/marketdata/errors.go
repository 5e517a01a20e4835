package marketdata

import (
	"errors"
	"fmt"
)

// Kind classifies market data failures. All kinds are per-ticker
// recoverable: the affected ticker is skipped and the pass continues.
type Kind int

const (
	KindUnavailable Kind = iota
	KindRateLimited
	KindAuth
	KindTimeout
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindAuth:
		return "auth"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "unavailable"
	}
}

// Error is a market data failure with a classification.
type Error struct {
	Kind   Kind
	Ticker string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("market data %s error for %s: %v", e.Kind, e.Ticker, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, defaulting to unavailable for foreign
// errors.
func KindOf(err error) Kind {
	var mdErr *Error
	if errors.As(err, &mdErr) {
		return mdErr.Kind
	}
	return KindUnavailable
}

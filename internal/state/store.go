// Package state implements the session-scoped alert dedup ledger.
package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/optionwatch/optionwatch/internal/models"
)

// Store is the alert state ledger. Get returns nil when the ticker has not
// alerted this session. Implementations own record mutation; callers never
// modify a returned record.
type Store interface {
	Get(ctx context.Context, ticker string, prevClose float64) (*models.AlertRecord, error)
	Put(ctx context.Context, ticker string, percentChange, prevClose float64, alertCount int) error
}

// SessionKey derives the trading-session identifier from the previous close.
// Previous close is constant through one session and changes when a new one
// begins, so a new value signals session rollover. Pure function: same
// prevClose always yields the same key.
func SessionKey(prevClose float64) string {
	return fmt.Sprintf("session_%.2f", prevClose)
}

// CompositeKey builds the ledger key for a ticker and session. Tickers are
// normalized to uppercase so casing never splits a session.
func CompositeKey(ticker string, prevClose float64) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + "#" + SessionKey(prevClose)
}

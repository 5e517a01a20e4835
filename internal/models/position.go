package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Option type constants
const (
	OptionTypeCall = "CALL"
	OptionTypePut  = "PUT"
)

// Direction constants for price moves an underlying is watched in
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Leg represents a single options position as fed from the positions file.
// Immutable once parsed.
type Leg struct {
	Underlying   string          `json:"underlying"`
	OptionSymbol string          `json:"option_symbol"`
	Type         string          `json:"type"` // OptionTypeCall or OptionTypePut
	Strike       decimal.Decimal `json:"strike"`
	Expiration   string          `json:"expiration"` // as fed, e.g. "2025-11-21"
	DTE          int             `json:"dte"`
	Qty          float64         `json:"qty"` // signed
	Side         string          `json:"side"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	ShortOpenPL  decimal.Decimal `json:"short_open_pl"`
}

// PositionSummary aggregates all legs for one underlying.
type PositionSummary struct {
	Symbol string `json:"symbol"`
	Calls  int    `json:"calls"`
	Puts   int    `json:"puts"`
	Legs   []Leg  `json:"legs"`
}

// IsIndex reports whether the underlying is an index ticker (prefixed $).
func (p *PositionSummary) IsIndex() bool {
	return strings.HasPrefix(p.Symbol, "$")
}

// Directions returns the price directions worth watching for this underlying:
// up for calls, down for puts, both when the symbol carries both.
func (p *PositionSummary) Directions() []string {
	var dirs []string
	if p.Calls > 0 {
		dirs = append(dirs, DirectionUp)
	}
	if p.Puts > 0 {
		dirs = append(dirs, DirectionDown)
	}
	return dirs
}

// Description returns a concise summary like "2 calls and 1 put".
func (p *PositionSummary) Description() string {
	var parts []string
	if p.Calls > 0 {
		parts = append(parts, fmt.Sprintf("%d call%s", p.Calls, plural(p.Calls)))
	}
	if p.Puts > 0 {
		parts = append(parts, fmt.Sprintf("%d put%s", p.Puts, plural(p.Puts)))
	}
	if len(parts) == 0 {
		return "No positions"
	}
	return strings.Join(parts, " and ")
}

// DetailedDescription renders per-leg detail with strikes, expirations,
// quantities, and OTM percentages relative to the previous close and the
// current price. Prices may be zero when unknown; OTM detail is omitted then.
func (p *PositionSummary) DetailedDescription(currentPrice, prevClose float64) string {
	if len(p.Legs) == 0 {
		return "No position details available"
	}

	lines := make([]string, 0, len(p.Legs))
	for _, leg := range p.Legs {
		exp := leg.Expiration
		if t, err := time.Parse("2006-01-02", leg.Expiration); err == nil {
			exp = t.Format("02 Jan 06")
		}

		qty := fmt.Sprintf("%+.0f", leg.Qty)

		strike, _ := leg.Strike.Float64()
		strikeStr := fmt.Sprintf("%.2f", strike)
		if strike == float64(int64(strike)) {
			strikeStr = fmt.Sprintf("%.0f", strike)
		}

		otm := ""
		if currentPrice > 0 && prevClose > 0 {
			var prevOTM, currOTM float64
			if leg.Type == OptionTypeCall {
				prevOTM = (strike - prevClose) / prevClose * 100
				currOTM = (strike - currentPrice) / currentPrice * 100
			} else {
				prevOTM = (prevClose - strike) / prevClose * 100
				currOTM = (currentPrice - strike) / currentPrice * 100
			}
			otm = fmt.Sprintf(" || OTM: Previously %+.2f%%, Now %+.2f%%", prevOTM, currOTM)
		}

		avgPrice, _ := leg.AvgPrice.Float64()
		lines = append(lines, fmt.Sprintf("• %s %s%s || Qty: %s%s || Trade: $%.2f",
			exp, strikeStr, optionLetter(leg.Type), qty, otm, avgPrice))
	}

	if len(lines) == 1 {
		return "ONE position at risk:\n" + lines[0]
	}
	return fmt.Sprintf("%d positions at risk:\n%s", len(lines), strings.Join(lines, "\n"))
}

func optionLetter(optionType string) string {
	if optionType == OptionTypePut {
		return "P"
	}
	return "C"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

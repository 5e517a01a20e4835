package positions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/optionwatch/optionwatch/internal/logger"
	"github.com/optionwatch/optionwatch/internal/models"
)

// feedRow mirrors one object of the positions JSON feed. All numeric fields
// arrive as either numbers or strings depending on the exporter, so they are
// decoded loosely and parsed by hand.
type feedRow struct {
	Underlying   string          `json:"Underlying"`
	PutCall      string          `json:"Put/Call"`
	Qty          json.RawMessage `json:"Qty"`
	Side         string          `json:"Side"`
	Strike       json.RawMessage `json:"Strike"`
	Exp          string          `json:"Exp"`
	DTE          json.RawMessage `json:"DTE"`
	AvgPrice     json.RawMessage `json:"Avg Price"`
	MarketValue  json.RawMessage `json:"Market Value"`
	ShortOpenPL  json.RawMessage `json:"Short Open PL"`
	OptionSymbol string          `json:"Option Symbol"`
}

// Parse decodes the positions feed into per-underlying summaries. Malformed
// rows are skipped with a warning; an empty or undecodable document is an
// error because the pass has nothing to evaluate.
func Parse(content string) ([]*models.PositionSummary, error) {
	var rows []feedRow
	if err := json.Unmarshal([]byte(content), &rows); err != nil {
		return nil, fmt.Errorf("positions feed is not a JSON array: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("positions feed contains no positions")
	}

	summaries := make(map[string]*models.PositionSummary)
	for i, row := range rows {
		underlying := strings.ToUpper(strings.TrimSpace(row.Underlying))
		if underlying == "" {
			logger.Warnf("row %d: missing Underlying, skipping", i+1)
			continue
		}

		optionType := strings.ToUpper(strings.TrimSpace(row.PutCall))
		if optionType != models.OptionTypeCall && optionType != models.OptionTypePut {
			logger.Debugf("row %d: unknown Put/Call %q for %s, skipping", i+1, row.PutCall, underlying)
			continue
		}

		summary, ok := summaries[underlying]
		if !ok {
			summary = &models.PositionSummary{Symbol: underlying}
			summaries[underlying] = summary
		}

		if optionType == models.OptionTypeCall {
			summary.Calls++
		} else {
			summary.Puts++
		}

		summary.Legs = append(summary.Legs, models.Leg{
			Underlying:   underlying,
			OptionSymbol: strings.TrimSpace(row.OptionSymbol),
			Type:         optionType,
			Strike:       rawDecimal(row.Strike),
			Expiration:   strings.TrimSpace(row.Exp),
			DTE:          int(rawFloat(row.DTE)),
			Qty:          rawFloat(row.Qty),
			Side:         strings.TrimSpace(row.Side),
			AvgPrice:     rawDecimal(row.AvgPrice),
			MarketValue:  rawDecimal(row.MarketValue),
			ShortOpenPL:  rawDecimal(row.ShortOpenPL),
		})
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("no valid positions found in feed")
	}

	out := make([]*models.PositionSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })

	logger.Infof("parsed %d underlyings from %d feed rows", len(out), len(rows))
	return out, nil
}

// NormalizeTicker converts feed ticker notation to the market data API's:
// the feed uses "/" for share classes where the API expects ".".
func NormalizeTicker(ticker string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ticker)), "/", ".")
}

// Tickers returns the unique normalized ticker list for a set of summaries.
// Feed symbols that normalize to the same API ticker appear once.
func Tickers(summaries []*models.PositionSummary) []string {
	seen := make(map[string]struct{}, len(summaries))
	var out []string
	for _, s := range summaries {
		ticker := NormalizeTicker(s.Symbol)
		if _, ok := seen[ticker]; ok {
			continue
		}
		seen[ticker] = struct{}{}
		out = append(out, ticker)
	}
	return out
}

func rawFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func rawDecimal(raw json.RawMessage) decimal.Decimal {
	return decimal.NewFromFloat(rawFloat(raw))
}

package models

import "sort"

// Snapshot holds per-ticker market state for one pass.
type Snapshot struct {
	Ticker        string  `json:"ticker"`
	CurrentPrice  float64 `json:"current_price"`
	PrevClose     float64 `json:"prev_close"`
	PercentChange float64 `json:"percent_change"`
	Volume        int64   `json:"volume,omitempty"` // optional; indices report none
	IsIndex       bool    `json:"is_index"`
}

// Valid reports whether the snapshot carries enough data to evaluate.
// Both prices must be positive; partial data never produces an alert.
func (s *Snapshot) Valid() bool {
	return s.CurrentPrice > 0 && s.PrevClose > 0
}

// Bar is a single OHLC point. Detectors only read Timestamp and Close.
type Bar struct {
	Timestamp int64   `json:"t"` // epoch millis
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// SortBarsChronological orders bars oldest first. The market data API returns
// series newest first.
func SortBarsChronological(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
}

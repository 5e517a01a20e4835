package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionSummary(t *testing.T) {
	t.Run("directions follow option types", func(t *testing.T) {
		calls := &PositionSummary{Symbol: "XYZ", Calls: 2}
		puts := &PositionSummary{Symbol: "XYZ", Puts: 1}
		both := &PositionSummary{Symbol: "XYZ", Calls: 1, Puts: 1}

		assert.Equal(t, []string{DirectionUp}, calls.Directions())
		assert.Equal(t, []string{DirectionDown}, puts.Directions())
		assert.Equal(t, []string{DirectionUp, DirectionDown}, both.Directions())
	})

	t.Run("index detection", func(t *testing.T) {
		assert.True(t, (&PositionSummary{Symbol: "$SPX"}).IsIndex())
		assert.False(t, (&PositionSummary{Symbol: "SPY"}).IsIndex())
	})

	t.Run("description pluralizes", func(t *testing.T) {
		assert.Equal(t, "2 calls and 1 put", (&PositionSummary{Calls: 2, Puts: 1}).Description())
		assert.Equal(t, "1 call", (&PositionSummary{Calls: 1}).Description())
		assert.Equal(t, "No positions", (&PositionSummary{}).Description())
	})
}

func TestDetailedDescription(t *testing.T) {
	summary := &PositionSummary{
		Symbol: "XYZ",
		Calls:  1,
		Legs: []Leg{{
			Underlying: "XYZ",
			Type:       OptionTypeCall,
			Strike:     decimal.NewFromInt(110),
			Expiration: "2026-11-21",
			Qty:        2,
			AvgPrice:   decimal.NewFromFloat(3.50),
		}},
	}

	t.Run("renders strike, qty and OTM detail", func(t *testing.T) {
		detail := summary.DetailedDescription(108, 100)

		assert.Contains(t, detail, "ONE position at risk:")
		assert.Contains(t, detail, "21 Nov 26 110C")
		assert.Contains(t, detail, "Qty: +2")
		assert.Contains(t, detail, "OTM: Previously +10.00%, Now +1.85%")
		assert.Contains(t, detail, "Trade: $3.50")
	})

	t.Run("omits OTM detail without prices", func(t *testing.T) {
		detail := summary.DetailedDescription(0, 0)

		assert.NotContains(t, detail, "OTM")
	})

	t.Run("counts multiple legs", func(t *testing.T) {
		multi := &PositionSummary{
			Symbol: "XYZ",
			Legs:   append(summary.Legs, summary.Legs[0]),
		}

		detail := multi.DetailedDescription(108, 100)

		assert.Contains(t, detail, "2 positions at risk:")
	})

	t.Run("no legs", func(t *testing.T) {
		detail := (&PositionSummary{Symbol: "XYZ"}).DetailedDescription(108, 100)
		assert.Equal(t, "No position details available", detail)
	})
}

func TestAlertRecordLastAlertTime(t *testing.T) {
	t.Run("parses RFC3339", func(t *testing.T) {
		record := &AlertRecord{Timestamp: "2026-03-02T14:30:00Z"}
		require.False(t, record.LastAlertTime().IsZero())
	})

	t.Run("nil and malformed are zero", func(t *testing.T) {
		var record *AlertRecord
		assert.True(t, record.LastAlertTime().IsZero())
		assert.True(t, (&AlertRecord{Timestamp: "bogus"}).LastAlertTime().IsZero())
	})
}

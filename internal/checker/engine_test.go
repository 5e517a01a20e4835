package checker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/marketdata"
	"github.com/optionwatch/optionwatch/internal/models"
	"github.com/optionwatch/optionwatch/internal/state"
)

func testAlertsConfig() config.AlertsConfig {
	return config.AlertsConfig{
		ThresholdPercent:   7.0,
		ThresholdTiers:     []float64{10, 12, 14},
		FiveSecondsPercent: 1.5,
		TenSecondsPercent:  2.0,
		FifteenSecondsPct:  2.5,
		MinutesPercent:     3.0,
	}
}

func callPosition(symbol string) *models.PositionSummary {
	return &models.PositionSummary{Symbol: symbol, Calls: 1}
}

func putPosition(symbol string) *models.PositionSummary {
	return &models.PositionSummary{Symbol: symbol, Puts: 1}
}

func tickerData(ticker string, prevClose, currentPrice float64) *marketdata.TickerData {
	return &marketdata.TickerData{
		Ticker: ticker,
		Snapshot: &models.Snapshot{
			Ticker:        ticker,
			CurrentPrice:  currentPrice,
			PrevClose:     prevClose,
			PercentChange: (currentPrice/prevClose - 1) * 100,
		},
	}
}

func TestEngineEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("below global threshold never fires", func(t *testing.T) {
		engine := NewEngine(testAlertsConfig(), state.NewMemory())

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 105))

		require.NoError(t, err)
		assert.False(t, decision.Fire)
		assert.Contains(t, decision.Reason, "below 7.0% threshold")
	})

	t.Run("first alert of the session is initial", func(t *testing.T) {
		engine := NewEngine(testAlertsConfig(), state.NewMemory())

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 108))

		require.NoError(t, err)
		require.True(t, decision.Fire)
		assert.Equal(t, models.AlertTypeInitial, decision.AlertType)
		assert.Equal(t, models.TriggerBasic, decision.TriggerType)
		assert.Equal(t, 1, decision.AlertCount)
	})

	t.Run("big enough further move escalates to incremental", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 115.5))

		require.NoError(t, err)
		require.True(t, decision.Fire)
		assert.Equal(t, models.AlertTypeIncremental, decision.AlertType)
		assert.Equal(t, 2, decision.AlertCount)
	})

	t.Run("increase exactly at threshold fires", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		data := tickerData("XYZ", 100, 115)
		data.Snapshot.PercentChange = 15.0

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), data)

		require.NoError(t, err)
		assert.True(t, decision.Fire)
	})

	t.Run("increase just below threshold is suppressed", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		data := tickerData("XYZ", 100, 114.99)
		data.Snapshot.PercentChange = 14.99

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), data)

		require.NoError(t, err)
		assert.False(t, decision.Fire)
		assert.True(t, decision.Suppressed)
	})

	t.Run("small further move is suppressed as already alerted", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 112))

		require.NoError(t, err)
		assert.False(t, decision.Fire)
		assert.True(t, decision.Suppressed)
		assert.Contains(t, decision.Reason, "already alerted")
	})

	t.Run("wrong direction never fires regardless of magnitude", func(t *testing.T) {
		engine := NewEngine(testAlertsConfig(), state.NewMemory())

		decision, err := engine.Evaluate(ctx, putPosition("XYZ"), tickerData("XYZ", 100, 109))

		require.NoError(t, err)
		assert.False(t, decision.Fire)
	})

	t.Run("retrigger after cooldown fires again at the same tier", func(t *testing.T) {
		cfg := testAlertsConfig()
		cfg.EnableRetrigger = true
		cfg.RetriggerCooldown = 3600 * time.Second

		store := state.NewMemory()
		store.SetClock(func() time.Time { return time.Now().Add(-4000 * time.Second) })
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(cfg, store)

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 107.5))

		require.NoError(t, err)
		require.True(t, decision.Fire)
		assert.Equal(t, models.AlertTypeRetrigger, decision.AlertType)
		assert.Equal(t, 2, decision.AlertCount)
	})

	t.Run("seconds detector fires when basic is blocked", func(t *testing.T) {
		// Every tier up to 14% already alerted; the day move alone cannot
		// fire, but a rapid climb in the last seconds qualifies and the
		// total increase clears the incremental bar.
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 14.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		data := tickerData("XYZ", 100, 122)
		data.Snapshot.PercentChange = 22.0
		data.Seconds = climbingBars(118, 0.5, 6)

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), data)

		require.NoError(t, err)
		require.True(t, decision.Fire)
		assert.Equal(t, models.TriggerConsecutiveSeconds, decision.TriggerType)
		assert.Equal(t, models.AlertTypeIncremental, decision.AlertType)
		assert.Equal(t, 2, decision.AlertCount)
	})

	t.Run("minutes detector runs after seconds", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 14.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		data := tickerData("XYZ", 100, 122)
		data.Snapshot.PercentChange = 22.0
		data.Seconds = nil
		data.Minutes = climbingBars(115, 1.0, 5)

		decision, err := engine.Evaluate(ctx, callPosition("XYZ"), data)

		require.NoError(t, err)
		require.True(t, decision.Fire)
		assert.Equal(t, models.TriggerConsecutiveMinutes, decision.TriggerType)
	})

	t.Run("index tickers use the basic detector only", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "$SPX", 8.0, 5000, 1))
		engine := NewEngine(testAlertsConfig(), store)

		data := &marketdata.TickerData{
			Ticker: "$SPX",
			Snapshot: &models.Snapshot{
				Ticker:        "$SPX",
				CurrentPrice:  5375,
				PrevClose:     5000,
				PercentChange: 7.5,
				IsIndex:       true,
			},
			Seconds: climbingBars(5300, 0.5, 6),
		}

		decision, err := engine.Evaluate(ctx, callPosition("$SPX"), data)

		require.NoError(t, err)
		assert.False(t, decision.Fire)
	})

	t.Run("evaluation without a state write is idempotent", func(t *testing.T) {
		store := state.NewMemory()
		require.NoError(t, store.Put(ctx, "XYZ", 8.0, 100, 1))
		engine := NewEngine(testAlertsConfig(), store)

		first, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 115.5))
		require.NoError(t, err)
		second, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 115.5))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("state read failure surfaces as an error", func(t *testing.T) {
		engine := NewEngine(testAlertsConfig(), &failingStore{})

		_, err := engine.Evaluate(ctx, callPosition("XYZ"), tickerData("XYZ", 100, 108))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "alert state")
	})
}

// climbingBars builds a chronological series starting at base where every
// bar climbs by stepPct percent.
func climbingBars(base, stepPct float64, count int) []models.Bar {
	bars := make([]models.Bar, count)
	price := base
	for i := 0; i < count; i++ {
		bars[i] = models.Bar{Timestamp: int64(i+1) * 1000, Close: price}
		price *= 1 + stepPct/100
	}
	return bars
}

type failingStore struct{}

func (f *failingStore) Get(context.Context, string, float64) (*models.AlertRecord, error) {
	return nil, fmt.Errorf("connection refused")
}

func (f *failingStore) Put(context.Context, string, float64, float64, int) error {
	return fmt.Errorf("connection refused")
}

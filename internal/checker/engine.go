// Package checker runs the per-ticker alert decision and orchestrates one
// full pass over the positions book.
package checker

import (
	"context"
	"fmt"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/detector"
	"github.com/optionwatch/optionwatch/internal/marketdata"
	"github.com/optionwatch/optionwatch/internal/models"
	"github.com/optionwatch/optionwatch/internal/state"
)

// Engine decides whether one ticker should alert. Detectors are pure; the
// engine reads alert state once per ticker and never writes it.
type Engine struct {
	threshold float64
	basic     *detector.Basic
	seconds   *detector.Consecutive
	minutes   *detector.Consecutive
	store     state.Store
}

// NewEngine builds the decision engine from alert thresholds.
func NewEngine(cfg config.AlertsConfig, store state.Store) *Engine {
	return &Engine{
		threshold: cfg.ThresholdPercent,
		basic:     detector.NewBasic(cfg.ThresholdPercent, cfg.ThresholdTiers, cfg.EnableRetrigger, cfg.RetriggerCooldown),
		seconds:   detector.NewConsecutiveSeconds(cfg.FiveSecondsPercent, cfg.TenSecondsPercent, cfg.FifteenSecondsPct),
		minutes:   detector.NewConsecutiveMinutes(cfg.MinutesPercent),
		store:     store,
	}
}

// Evaluate produces the decision for one ticker. Detector precedence is
// basic, then seconds, then minutes; index tickers have no sub-day bars so
// only the basic detector applies. The returned error is a state store
// failure; everything else is expressed in the decision itself.
func (e *Engine) Evaluate(ctx context.Context, position *models.PositionSummary, data *marketdata.TickerData) (*models.Decision, error) {
	snapshot := data.Snapshot
	pct := snapshot.PercentChange
	ticker := data.Ticker

	decision := &models.Decision{
		Ticker:        ticker,
		PercentChange: pct,
	}

	if abs(pct) < e.threshold {
		decision.Reason = fmt.Sprintf("change %+.2f%% below %.1f%% threshold", pct, e.threshold)
		return decision, nil
	}

	record, err := e.store.Get(ctx, ticker, snapshot.PrevClose)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert state for %s: %w", ticker, err)
	}

	var lastPct float64
	if record != nil {
		lastPct = record.LastAlertedPercent
	}
	decision.LastAlertedPercent = lastPct

	directions := position.Directions()

	result := e.basic.Evaluate(pct, directions, lastPct, record.LastAlertTime())
	triggerType := models.TriggerBasic

	if !result.Fire && !snapshot.IsIndex {
		if secRes := e.seconds.Evaluate(ticker, directions, data.Seconds); secRes.Fire {
			result = secRes
			triggerType = models.TriggerConsecutiveSeconds
		} else if minRes := e.minutes.Evaluate(ticker, directions, data.Minutes); minRes.Fire {
			result = minRes
			triggerType = models.TriggerConsecutiveMinutes
		}
	}

	if !result.Fire {
		decision.Reason = result.Reason
		return decision, nil
	}

	switch {
	case record == nil:
		decision.Fire = true
		decision.AlertType = models.AlertTypeInitial
		decision.AlertCount = 1
	case result.Retrigger:
		decision.Fire = true
		decision.AlertType = models.AlertTypeRetrigger
		decision.AlertCount = record.AlertCount + 1
	default:
		increase := pct - lastPct
		if increase >= e.threshold {
			decision.Fire = true
			decision.AlertType = models.AlertTypeIncremental
			decision.AlertCount = record.AlertCount + 1
		} else {
			decision.Suppressed = true
			decision.Reason = fmt.Sprintf("already alerted at %.2f%% this session, increase %.2f%% below %.1f%% threshold",
				lastPct, increase, e.threshold)
			return decision, nil
		}
	}

	decision.TriggerType = triggerType
	decision.Reason = result.Reason
	return decision, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/optionwatch/optionwatch/internal/logger"
	"github.com/optionwatch/optionwatch/internal/marketdata"
	"github.com/optionwatch/optionwatch/internal/models"
	"github.com/optionwatch/optionwatch/internal/notify"
	"github.com/optionwatch/optionwatch/internal/positions"
	"github.com/optionwatch/optionwatch/internal/state"
)

// Checker runs one complete pass: load positions, fetch market data, decide,
// dispatch, persist.
type Checker struct {
	source     positions.Source
	gateway    *marketdata.Gateway
	engine     *Engine
	store      state.Store
	dispatcher *notify.Dispatcher
	now        func() time.Time
}

// New assembles a checker from its collaborators.
func New(source positions.Source, gateway *marketdata.Gateway, engine *Engine, store state.Store, dispatcher *notify.Dispatcher) *Checker {
	return &Checker{
		source:     source,
		gateway:    gateway,
		engine:     engine,
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// RunPass executes one pass. Only positions-source failures return an error;
// per-ticker and per-channel failures are recorded in the result and the
// pass continues.
func (c *Checker) RunPass(ctx context.Context) (*PassResult, error) {
	started := c.now()
	result := &PassResult{StartedAt: started}

	content, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}

	summaries, err := positions.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse positions: %w", err)
	}
	result.PositionsChecked = len(summaries)

	// Map market-data ticker notation back to each summary. Feed symbols
	// that normalize to the same API ticker are merged so a ticker is
	// evaluated once per pass.
	byTicker := make(map[string]*models.PositionSummary, len(summaries))
	for _, s := range summaries {
		normalized := positions.NormalizeTicker(s.Symbol)
		if existing, ok := byTicker[normalized]; ok {
			existing.Calls += s.Calls
			existing.Puts += s.Puts
			existing.Legs = append(existing.Legs, s.Legs...)
			continue
		}
		byTicker[normalized] = s
	}
	tickers := positions.Tickers(summaries)

	fetched := c.gateway.FetchAll(ctx, tickers)

	for _, ticker := range tickers {
		summary := byTicker[ticker]
		data := fetched[ticker]
		if data == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no market data fetched", ticker))
			continue
		}

		for _, e := range data.Errors {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", ticker, e))
		}

		if data.Snapshot == nil || !data.Snapshot.Valid() {
			if len(data.Errors) == 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: no valid snapshot", ticker))
			}
			continue
		}
		result.SnapshotsFetched++

		decision, err := c.engine.Evaluate(ctx, summary, data)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		if !decision.Fire {
			if decision.Suppressed {
				result.SkippedAlreadyAlerted++
			}
			result.Skipped = append(result.Skipped, SkipDetail{
				Ticker:         ticker,
				Reason:         decision.Reason,
				AlreadyAlerted: decision.Suppressed,
			})
			logger.Debugf("%s skipped: %s", ticker, decision.Reason)
			continue
		}

		detail := c.dispatch(ctx, summary, data, decision)
		result.Alerts = append(result.Alerts, detail)

		sent := false
		for _, ok := range detail.Sent {
			if ok {
				sent = true
				break
			}
		}
		if sent {
			result.AlertsSent++
		}
		result.Errors = append(result.Errors, detail.Errors...)

		if err := c.store.Put(ctx, ticker, decision.PercentChange, data.Snapshot.PrevClose, decision.AlertCount); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to update alert state: %v", ticker, err))
		}
	}

	result.Duration = c.now().Sub(started)
	c.logSummary(result)
	return result, nil
}

func (c *Checker) dispatch(ctx context.Context, summary *models.PositionSummary, data *marketdata.TickerData, decision *models.Decision) AlertDetail {
	snapshot := data.Snapshot

	alert := &notify.Alert{
		Ticker:             decision.Ticker,
		AlertType:          decision.AlertType,
		TriggerType:        decision.TriggerType,
		AlertCount:         decision.AlertCount,
		PercentChange:      decision.PercentChange,
		LastAlertedPercent: decision.LastAlertedPercent,
		PrevClose:          snapshot.PrevClose,
		CurrentPrice:       snapshot.CurrentPrice,
		Volume:             snapshot.Volume,
		PositionDesc:       summary.Description(),
		PositionDetail:     summary.DetailedDescription(snapshot.CurrentPrice, snapshot.PrevClose),
		Reason:             decision.Reason,
		Time:               c.now(),
	}

	logger.Infof("%s fired %s %s alert #%d: %s",
		decision.Ticker, decision.AlertType, decision.TriggerType, decision.AlertCount, decision.Reason)

	dres := c.dispatcher.Dispatch(ctx, alert)

	detail := AlertDetail{
		Ticker:             decision.Ticker,
		AlertType:          decision.AlertType,
		TriggerType:        decision.TriggerType,
		AlertCount:         decision.AlertCount,
		PercentChange:      decision.PercentChange,
		LastAlertedPercent: decision.LastAlertedPercent,
		Reason:             decision.Reason,
		Sent:               dres.Sent,
	}
	for _, e := range dres.Errors {
		detail.Errors = append(detail.Errors, decision.Ticker+": "+e)
	}
	return detail
}

func (c *Checker) logSummary(result *PassResult) {
	logger.Infof("pass %s: %d positions, %d snapshots, %d alerts sent, %d already alerted, %d errors (%.1fs)",
		result.Outcome(), result.PositionsChecked, result.SnapshotsFetched, result.AlertsSent,
		result.SkippedAlreadyAlerted, len(result.Errors), result.Duration.Seconds())

	for _, a := range result.Alerts {
		logger.Infof("alert %s %s #%d %+.2f%% sent=%v", a.Ticker, a.AlertType, a.AlertCount, a.PercentChange, a.Sent)
	}
	for _, s := range result.Skipped {
		logger.Debugf("skip %s: %s", s.Ticker, s.Reason)
	}
	for _, e := range result.Errors {
		logger.Warnf("pass error: %s", e)
	}
}

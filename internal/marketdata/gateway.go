package marketdata

import (
	"context"
	"strings"
	"sync"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/logger"
	"github.com/optionwatch/optionwatch/internal/models"
	"github.com/optionwatch/optionwatch/internal/worker"
)

// TickerData bundles everything fetched for one ticker in one pass. Failed
// units leave their field empty and record the failure in Errors; a ticker
// with no valid snapshot is skipped by the decision stage.
type TickerData struct {
	Ticker   string
	Snapshot *models.Snapshot
	Seconds  []models.Bar
	Minutes  []models.Bar
	Daily    []models.Bar
	Errors   []string
}

// Gateway fetches market data for a set of tickers using a shared bounded
// worker pool.
type Gateway struct {
	client *Client
	pool   *worker.Pool
	cfg    config.MarketDataConfig
}

// NewGateway builds a gateway on top of an existing pool.
func NewGateway(cfg config.MarketDataConfig, pool *worker.Pool) *Gateway {
	return &Gateway{
		client: NewClient(cfg),
		pool:   pool,
		cfg:    cfg,
	}
}

// FetchAll fans out (ticker, resolution) fetch units across the pool and
// waits for all of them. Index tickers get a single snapshot unit. Individual
// failures never fail the batch.
func (g *Gateway) FetchAll(ctx context.Context, tickers []string) map[string]*TickerData {
	results := make(map[string]*TickerData, len(tickers))
	var mu sync.Mutex

	for _, t := range tickers {
		ticker := strings.ToUpper(t)
		results[ticker] = &TickerData{Ticker: ticker}
	}

	record := func(ticker string, err error, apply func(td *TickerData)) {
		mu.Lock()
		defer mu.Unlock()
		td := results[ticker]
		if err != nil {
			td.Errors = append(td.Errors, err.Error())
			return
		}
		apply(td)
	}

	for ticker := range results {
		ticker := ticker

		if strings.HasPrefix(ticker, "$") {
			g.pool.Submit(ctx, func() {
				snapshot, err := g.client.IndexSnapshot(ctx, ticker)
				record(ticker, err, func(td *TickerData) { td.Snapshot = snapshot })
			})
			continue
		}

		// Seconds feed both the snapshot's current price and the seconds
		// detector; daily bars carry the previous close.
		g.pool.Submit(ctx, func() {
			bars, err := g.client.SecondBars(ctx, ticker, g.cfg.SecondsLimit)
			record(ticker, err, func(td *TickerData) { td.Seconds = bars })
		})
		g.pool.Submit(ctx, func() {
			bars, err := g.client.MinuteBars(ctx, ticker, g.cfg.MinutesLimit)
			record(ticker, err, func(td *TickerData) { td.Minutes = bars })
		})
		g.pool.Submit(ctx, func() {
			bars, err := g.client.DailyBars(ctx, ticker)
			record(ticker, err, func(td *TickerData) { td.Daily = bars })
		})
	}

	g.pool.Wait()

	// Derive stock snapshots once every unit for the batch has settled.
	fetched := 0
	for ticker, td := range results {
		if td.Snapshot != nil {
			fetched++
			continue
		}
		if strings.HasPrefix(ticker, "$") {
			continue
		}
		snapshot, err := snapshotFromBars(ticker, td.Seconds, td.Daily)
		if err != nil {
			td.Errors = append(td.Errors, err.Error())
			continue
		}
		td.Snapshot = snapshot
		fetched++
	}

	logger.Infof("market data fetch completed: %d/%d tickers with snapshots", fetched, len(tickers))
	return results
}

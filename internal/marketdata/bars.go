package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/optionwatch/optionwatch/internal/logger"
	"github.com/optionwatch/optionwatch/internal/models"
)

type aggsResponse struct {
	Ticker       string       `json:"ticker"`
	Status       string       `json:"status"`
	ResultsCount int          `json:"resultsCount"`
	Results      []models.Bar `json:"results"`
}

// bars fetches an OHLC range at the given resolution, newest first.
func (c *Client) bars(ctx context.Context, ticker, timespan, from, to string, limit int) ([]models.Bar, error) {
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/%s/%s/%s", ticker, timespan, from, to)
	params := map[string]string{
		"adjusted": "true",
		"sort":     "desc",
		"limit":    fmt.Sprintf("%d", limit),
	}

	var resp aggsResponse
	if err := c.get(ctx, ticker, path, params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(ticker, resp.Status); err != nil {
		return nil, err
	}

	logger.Debugf("%s: fetched %d %s bars", ticker, len(resp.Results), timespan)
	return resp.Results, nil
}

// SecondBars returns today's second-resolution bars. When today is empty
// (pre-market, holidays) it falls back to the previous calendar day.
func (c *Client) SecondBars(ctx context.Context, ticker string, limit int) ([]models.Bar, error) {
	today := time.Now().Format("2006-01-02")
	bars, err := c.bars(ctx, ticker, "second", today, today, limit)
	if err != nil {
		return nil, err
	}
	if len(bars) > 0 {
		return bars, nil
	}

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	logger.Debugf("%s: no seconds data for %s, trying %s", ticker, today, yesterday)
	return c.bars(ctx, ticker, "second", yesterday, yesterday, limit)
}

// MinuteBars returns today's minute-resolution bars.
func (c *Client) MinuteBars(ctx context.Context, ticker string, limit int) ([]models.Bar, error) {
	today := time.Now().Format("2006-01-02")
	return c.bars(ctx, ticker, "minute", today, today, limit)
}

// DailyBars returns recent daily bars; the window reaches back ten calendar
// days so weekends and holidays still leave a previous session.
func (c *Client) DailyBars(ctx context.Context, ticker string) ([]models.Bar, error) {
	end := time.Now().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -10)
	return c.bars(ctx, ticker, "day", start.Format("2006-01-02"), end.Format("2006-01-02"), 10)
}

package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/optionwatch/optionwatch/internal/models"
)

type indexSnapshotResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Ticker  string  `json:"ticker"`
		Value   float64 `json:"value"`
		Session struct {
			PreviousClose float64 `json:"previous_close"`
			ChangePercent float64 `json:"change_percent"`
		} `json:"session"`
	} `json:"results"`
}

// IndexSnapshot fetches the snapshot for an index ticker like $SPX. Indices
// use a different endpoint shape: source-provided percent change, no volume,
// no sub-day bars.
func (c *Client) IndexSnapshot(ctx context.Context, ticker string) (*models.Snapshot, error) {
	apiTicker := ticker
	if strings.HasPrefix(ticker, "$") {
		apiTicker = "I:" + ticker[1:]
	}

	var resp indexSnapshotResponse
	err := c.get(ctx, ticker, "/v3/snapshot/indices", map[string]string{"ticker": apiTicker}, &resp)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(ticker, resp.Status); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("empty index snapshot")}
	}

	result := resp.Results[0]
	snapshot := &models.Snapshot{
		Ticker:        strings.ToUpper(ticker),
		CurrentPrice:  result.Value,
		PrevClose:     result.Session.PreviousClose,
		PercentChange: result.Session.ChangePercent,
		IsIndex:       true,
	}
	if !snapshot.Valid() {
		return nil, &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("index snapshot missing prices")}
	}
	return snapshot, nil
}

// snapshotFromBars derives a stock snapshot: current price from the latest
// second bar, previous close from the latest daily bar. Bars arrive newest
// first from the API.
func snapshotFromBars(ticker string, seconds, days []models.Bar) (*models.Snapshot, error) {
	if len(seconds) == 0 {
		return nil, &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("no seconds data")}
	}
	if len(days) == 0 {
		return nil, &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("no daily data")}
	}

	latestSecond := newestBar(seconds)
	latestDay := newestBar(days)

	snapshot := &models.Snapshot{
		Ticker:       strings.ToUpper(ticker),
		CurrentPrice: latestSecond.Close,
		PrevClose:    latestDay.Close,
		Volume:       int64(latestSecond.Volume),
	}
	if !snapshot.Valid() {
		return nil, &Error{Kind: KindMalformed, Ticker: ticker,
			Err: fmt.Errorf("invalid prices (current: %.4f, prev close: %.4f)", snapshot.CurrentPrice, snapshot.PrevClose)}
	}
	snapshot.PercentChange = (snapshot.CurrentPrice/snapshot.PrevClose - 1) * 100
	return snapshot, nil
}

func newestBar(bars []models.Bar) models.Bar {
	newest := bars[0]
	for _, b := range bars[1:] {
		if b.Timestamp > newest.Timestamp {
			newest = b
		}
	}
	return newest
}

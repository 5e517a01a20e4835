// Package marketdata wraps the Polygon-style bars and snapshot API.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/optionwatch/optionwatch/internal/config"
)

// Client is the low-level HTTP client for the market data API. A fixed
// minimum delay between requests is enforced per worker, not globally.
type Client struct {
	http         *resty.Client
	apiKey       string
	requestDelay time.Duration
}

// NewClient builds a market data client from configuration.
func NewClient(cfg config.MarketDataConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:         httpClient,
		apiKey:       cfg.APIKey,
		requestDelay: cfg.RequestDelay,
	}
}

// get performs one API request, decodes the body into out, and classifies
// failures.
func (c *Client) get(ctx context.Context, ticker, path string, params map[string]string, out interface{}) error {
	if c.requestDelay > 0 {
		time.Sleep(c.requestDelay)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", c.apiKey).
		Get(path)
	if err != nil {
		kind := KindUnavailable
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Ticker: ticker, Err: err}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Ticker: ticker, Err: fmt.Errorf("rate limit exceeded")}
	case http.StatusForbidden, http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Ticker: ticker, Err: fmt.Errorf("authentication failed - check API key")}
	default:
		return &Error{Kind: KindUnavailable, Ticker: ticker, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.String())}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// checkStatus validates the API-level status field shared by all endpoints.
func checkStatus(ticker, status string) error {
	switch status {
	case "OK", "DELAYED", "":
		return nil
	default:
		return &Error{Kind: KindMalformed, Ticker: ticker, Err: fmt.Errorf("API status %q", status)}
	}
}

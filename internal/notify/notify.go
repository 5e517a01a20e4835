// Package notify formats and dispatches alerts to the configured channels.
package notify

import (
	"context"
	"time"

	"github.com/optionwatch/optionwatch/internal/logger"
)

// Alert is everything a channel needs to render one notification.
type Alert struct {
	Ticker             string
	AlertType          string // initial | incremental | retrigger
	TriggerType        string
	AlertCount         int
	PercentChange      float64
	LastAlertedPercent float64
	PrevClose          float64
	CurrentPrice       float64
	Volume             int64
	PositionDesc       string // "2 calls and 1 put"
	PositionDetail     string // multi-line per-leg block
	Reason             string
	Time               time.Time
}

// Channel delivers one alert over one transport. Send failures are local to
// the channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert *Alert) error
}

// DispatchResult records per-channel delivery outcome for one alert.
// Sent-status is per channel, never collapsed into one flag.
type DispatchResult struct {
	Sent   map[string]bool
	Errors []string
}

// Sent reports whether at least one channel delivered the alert.
func (r *DispatchResult) AnySent() bool {
	for _, ok := range r.Sent {
		if ok {
			return true
		}
	}
	return false
}

// Dispatcher fans one alert out to every configured channel. One channel's
// failure never blocks the others.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher builds a dispatcher over the given channels.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Channels returns the configured channel count.
func (d *Dispatcher) Channels() int {
	return len(d.channels)
}

// Dispatch sends the alert to every channel, collecting independent results.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *Alert) *DispatchResult {
	result := &DispatchResult{Sent: make(map[string]bool, len(d.channels))}

	for _, ch := range d.channels {
		if err := ch.Send(ctx, alert); err != nil {
			logger.Warnf("%s alert failed for %s: %v", ch.Name(), alert.Ticker, err)
			result.Sent[ch.Name()] = false
			result.Errors = append(result.Errors, ch.Name()+": "+err.Error())
			continue
		}
		result.Sent[ch.Name()] = true
	}
	return result
}

package models

import "time"

// Alert trigger type constants: which detector produced the signal.
const (
	TriggerBasic              = "basic"
	TriggerConsecutiveSeconds = "consecutive_seconds"
	TriggerConsecutiveMinutes = "consecutive_minutes"
)

// Alert type constants: how the alert relates to earlier alerts this session.
const (
	AlertTypeInitial     = "initial"
	AlertTypeIncremental = "incremental"
	AlertTypeRetrigger   = "retrigger"
)

// AlertRecord is the session-scoped dedup/escalation ledger entry for one
// ticker. Owned and mutated by the state store only.
type AlertRecord struct {
	Ticker             string  `json:"ticker"`
	SessionKey         string  `json:"session_key"`
	PrevClose          float64 `json:"prev_close"`
	LastAlertedPercent float64 `json:"last_alerted_percent"` // signed
	AlertCount         int     `json:"alert_count"`
	Timestamp          string  `json:"timestamp"` // RFC3339
}

// LastAlertTime parses the record timestamp, returning the zero time when
// absent or malformed.
func (r *AlertRecord) LastAlertTime() time.Time {
	if r == nil || r.Timestamp == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Decision is the engine's verdict for one ticker in one pass. Detectors and
// the engine never mutate stored state; the orchestrator applies the decision.
type Decision struct {
	Ticker             string  `json:"ticker"`
	Fire               bool    `json:"fire"`
	TriggerType        string  `json:"trigger_type,omitempty"`
	AlertType          string  `json:"alert_type,omitempty"`
	AlertCount         int     `json:"alert_count,omitempty"`
	Reason             string  `json:"reason"`
	PercentChange      float64 `json:"percent_change"`
	LastAlertedPercent float64 `json:"last_alerted_percent"`
	Suppressed         bool    `json:"suppressed"` // true when dedup swallowed a detector fire
}

// AlertEvent is the JSON payload published to the event topic for every
// fired alert.
type AlertEvent struct {
	EventType     string    `json:"event_type"`
	Ticker        string    `json:"ticker"`
	AlertType     string    `json:"alert_type"`
	TriggerType   string    `json:"trigger_type"`
	AlertCount    int       `json:"alert_count"`
	PercentChange float64   `json:"percent_change"`
	CurrentPrice  float64   `json:"current_price"`
	PrevClose     float64   `json:"prev_close"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

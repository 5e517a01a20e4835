package checker

import "time"

// Pass outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// AlertDetail records one fired alert and its per-channel delivery status.
type AlertDetail struct {
	Ticker             string          `json:"ticker"`
	AlertType          string          `json:"alert_type"`
	TriggerType        string          `json:"trigger_type"`
	AlertCount         int             `json:"alert_count"`
	PercentChange      float64         `json:"percent_change"`
	LastAlertedPercent float64         `json:"last_alerted_percent"`
	Reason             string          `json:"reason"`
	Sent               map[string]bool `json:"sent"`
	Errors             []string        `json:"errors,omitempty"`
}

// SkipDetail records why one ticker produced no alert.
type SkipDetail struct {
	Ticker         string `json:"ticker"`
	Reason         string `json:"reason"`
	AlreadyAlerted bool   `json:"already_alerted"`
}

// PassResult is the structured outcome of one complete pass. Every ticker
// appears as an alert, a skip, or an error entry; nothing is dropped
// silently.
type PassResult struct {
	StartedAt             time.Time     `json:"started_at"`
	Duration              time.Duration `json:"duration"`
	PositionsChecked      int           `json:"positions_checked"`
	SnapshotsFetched      int           `json:"snapshots_fetched"`
	AlertsSent            int           `json:"alerts_sent"`
	SkippedAlreadyAlerted int           `json:"skipped_already_alerted"`
	Errors                []string      `json:"errors,omitempty"`
	Alerts                []AlertDetail `json:"alerts,omitempty"`
	Skipped               []SkipDetail  `json:"skipped,omitempty"`
}

// Outcome classifies the pass: success when nothing failed, partial when
// errors occurred but at least one alert went out, failure when errors
// occurred and nothing was delivered.
func (r *PassResult) Outcome() string {
	if len(r.Errors) == 0 {
		return OutcomeSuccess
	}
	if r.AlertsSent > 0 {
		return OutcomePartial
	}
	return OutcomeFailure
}

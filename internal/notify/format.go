package notify

import (
	"fmt"
	"time"

	"github.com/optionwatch/optionwatch/internal/models"
)

// MaxMessageLength is the channel-agnostic message cap (Telegram's limit,
// applied everywhere for consistency).
const MaxMessageLength = 4096

var easternTime = time.FixedZone("EST", -5*3600)

// FormatMessage renders the chat message for an alert, degrading gracefully
// when the message exceeds the cap: first the position detail is dropped,
// then the timestamp is shortened.
func FormatMessage(alert *Alert) string {
	now := alert.Time.In(easternTime)
	stamp := now.Format("2006-01-02 03:04 PM")

	var percentText, spikeText string
	if alert.AlertType == models.AlertTypeIncremental {
		percentText = fmt.Sprintf("%.2f%% -> %.2f%%", alert.LastAlertedPercent, alert.PercentChange)
		spikeText = "Another Spike!"
	} else {
		percentText = fmt.Sprintf("%+.2f%%", alert.PercentChange)
		if alert.PercentChange > 0 {
			spikeText = "Spike UP!"
		} else {
			spikeText = "Spike DOWN!"
		}
		if alert.AlertType == models.AlertTypeRetrigger {
			spikeText += " (retrigger)"
		}
	}

	msg := fmt.Sprintf("[%s] [%s] 🚨 %s 🚨 %s $%.2f → $%.2f.",
		alert.Ticker, stamp, percentText, spikeText, alert.PrevClose, alert.CurrentPrice)

	if alert.Volume > 0 {
		msg += fmt.Sprintf(" || Volume: %d", alert.Volume)
	}
	if alert.PositionDetail != "" {
		msg += "\n\nWe have " + alert.PositionDetail
	}

	if len(msg) <= MaxMessageLength {
		return msg
	}

	// Too long: drop the position block.
	msg = fmt.Sprintf("[%s] [%s] %s $%.2f → $%.2f",
		alert.Ticker, stamp, spikeText, alert.PrevClose, alert.CurrentPrice)
	if len(msg) <= MaxMessageLength {
		return msg
	}

	// Still too long: shorten the timestamp.
	return fmt.Sprintf("[%s] [%s] %s $%.2f → $%.2f",
		alert.Ticker, now.Format("01-02 03:04 PM"), spikeText, alert.PrevClose, alert.CurrentPrice)
}

// VoiceMessage renders the spoken sentence for the voice channel.
func VoiceMessage(alert *Alert) string {
	if alert.AlertType == models.AlertTypeIncremental {
		return fmt.Sprintf("Alert: %s has increased another %.1f percent, now at %.1f percent total.",
			alert.Ticker, alert.PercentChange-alert.LastAlertedPercent, alert.PercentChange)
	}
	direction := "up"
	if alert.PercentChange < 0 {
		direction = "down"
	}
	magnitude := alert.PercentChange
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return fmt.Sprintf("Alert: %s is %s %.1f percent.", alert.Ticker, direction, magnitude)
}

// Direction returns "up" or "down" for the alert's move.
func Direction(alert *Alert) string {
	if alert.PercentChange < 0 {
		return models.DirectionDown
	}
	return models.DirectionUp
}

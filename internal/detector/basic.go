package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/optionwatch/optionwatch/internal/models"
)

// Basic is the single-sample threshold detector. It fires when the day's
// percent change crosses a threshold tier in a watched direction that has not
// already been alerted this session.
type Basic struct {
	threshold float64
	tiers     []float64 // descending, highest first, base threshold last
	retrigger bool
	cooldown  time.Duration
	now       func() time.Time
}

// NewBasic builds a basic detector. extraTiers are thresholds above the base
// (any order); they are checked highest first so the most specific tier names
// the reason.
func NewBasic(threshold float64, extraTiers []float64, retrigger bool, cooldown time.Duration) *Basic {
	tiers := make([]float64, 0, len(extraTiers)+1)
	tiers = append(tiers, extraTiers...)
	sort.Sort(sort.Reverse(sort.Float64Slice(tiers)))
	tiers = append(tiers, threshold)

	return &Basic{
		threshold: threshold,
		tiers:     tiers,
		retrigger: retrigger,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Evaluate decides whether the current percent change should fire.
// lastAlertedPercent is signed: negative when the previous alert was a
// downward move. lastAlert is the zero time when no alert exists.
func (b *Basic) Evaluate(percentChange float64, directions []string, lastAlertedPercent float64, lastAlert time.Time) Result {
	isRetrigger := false
	if b.retrigger && lastAlertedPercent != 0 && !lastAlert.IsZero() {
		if b.now().Sub(lastAlert) >= b.cooldown {
			// Cooldown elapsed: forget the old baseline so the same
			// threshold can fire again.
			lastAlertedPercent = 0
			isRetrigger = true
		}
	}

	for _, tier := range b.tiers {
		if watches(directions, models.DirectionUp) && percentChange > 0 {
			if percentChange >= tier && lastAlertedPercent < tier {
				reason := fmt.Sprintf("%+.2f%% upward move crossed the %.0f%% tier, matches CALL positions", percentChange, tier)
				if isRetrigger {
					reason += " [RETRIGGER]"
				}
				return Result{Fire: true, Reason: reason, Retrigger: isRetrigger}
			}
		}
		if watches(directions, models.DirectionDown) && percentChange < 0 {
			if percentChange <= -tier && lastAlertedPercent > -tier {
				reason := fmt.Sprintf("%.2f%% downward move crossed the %.0f%% tier, matches PUT positions", percentChange, tier)
				if isRetrigger {
					reason += " [RETRIGGER]"
				}
				return Result{Fire: true, Reason: reason, Retrigger: isRetrigger}
			}
		}
	}

	return Result{
		Fire:   false,
		Reason: fmt.Sprintf("change %+.2f%% - no new threshold crossed (last alert: %.2f%%)", percentChange, lastAlertedPercent),
	}
}

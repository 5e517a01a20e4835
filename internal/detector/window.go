package detector

import (
	"fmt"

	"github.com/optionwatch/optionwatch/internal/models"
)

// Window is one sliding-window configuration: Size counts bar-to-bar changes
// inside the window.
type Window struct {
	Size      int
	Threshold float64
}

// Consecutive scans a recent bar series for windows of consecutive moves
// whose summed percent change exceeds a threshold. The same algorithm serves
// second and minute resolution; only the window plan and unit differ.
type Consecutive struct {
	unit    string // "second" or "minute"
	windows []Window
}

// NewConsecutiveSeconds builds the seconds-resolution detector with fixed
// 5/10/15 windows, each with its own threshold.
func NewConsecutiveSeconds(five, ten, fifteen float64) *Consecutive {
	return &Consecutive{
		unit: "second",
		windows: []Window{
			{Size: 5, Threshold: five},
			{Size: 10, Threshold: ten},
			{Size: 15, Threshold: fifteen},
		},
	}
}

// NewConsecutiveMinutes builds the minutes-resolution detector checking every
// window size from 2 through 10 against a single threshold.
func NewConsecutiveMinutes(threshold float64) *Consecutive {
	windows := make([]Window, 0, 9)
	for size := 2; size <= 10; size++ {
		windows = append(windows, Window{Size: size, Threshold: threshold})
	}
	return &Consecutive{unit: "minute", windows: windows}
}

type sequence struct {
	size      int
	total     float64 // full precision; rounded only for display
	direction string
}

// Evaluate scans the bar series for a qualifying window. Bars may arrive in
// any order; they are sorted chronologically before analysis.
func (c *Consecutive) Evaluate(ticker string, directions []string, bars []models.Bar) Result {
	if len(bars) < 2 {
		return Result{Fire: false, Reason: fmt.Sprintf("insufficient %s bars (%d)", c.unit, len(bars))}
	}

	sorted := make([]models.Bar, len(bars))
	copy(sorted, bars)
	models.SortBarsChronological(sorted)

	changes := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].Close
		curr := sorted[i].Close
		if prev <= 0 || curr <= 0 {
			continue
		}
		changes = append(changes, (curr-prev)/prev*100)
	}

	var sequences []sequence
	for _, w := range c.windows {
		if len(changes) < w.Size {
			continue
		}
		for i := 0; i+w.Size <= len(changes); i++ {
			total := 0.0
			for _, ch := range changes[i : i+w.Size] {
				total += ch
			}
			if abs(total) < w.Threshold {
				continue
			}
			direction := models.DirectionUp
			if total < 0 {
				direction = models.DirectionDown
			}
			sequences = append(sequences, sequence{size: w.Size, total: total, direction: direction})
		}
	}

	if len(sequences) == 0 {
		return Result{Fire: false, Reason: fmt.Sprintf("no consecutive %s windows found above thresholds", c.unit)}
	}

	var best *sequence
	matched := 0
	for i := range sequences {
		seq := &sequences[i]
		if !watches(directions, seq.direction) {
			continue
		}
		matched++
		if best == nil || abs(seq.total) > abs(best.total) ||
			(abs(seq.total) == abs(best.total) && seq.size > best.size) {
			best = seq
		}
	}

	if best == nil {
		return Result{
			Fire:   false,
			Reason: fmt.Sprintf("found %d %s windows but none match position directions", len(sequences), c.unit),
		}
	}

	side := "CALL"
	if best.direction == models.DirectionDown {
		side = "PUT"
	}
	return Result{
		Fire:   true,
		Reason: fmt.Sprintf("%d-%s window with %+.2f%% total (%s direction)", best.size, c.unit, best.total, side),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

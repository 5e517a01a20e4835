// Package detector implements the alert signal detectors. Detectors are
// pure: they read their inputs and return a Result, never touching stored
// state.
package detector

// Result is a detector verdict with a human-readable reason.
type Result struct {
	Fire      bool
	Reason    string
	Retrigger bool // basic detector only: fired because the cooldown elapsed
}

func watches(directions []string, direction string) bool {
	for _, d := range directions {
		if d == direction {
			return true
		}
	}
	return false
}

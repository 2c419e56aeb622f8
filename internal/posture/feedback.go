// Package posture classifies a body pose into per-body-part form feedback.
package posture

import (
	"math"
	"sort"
)

// Severity grades a single check.
type Severity string

const (
	Good    Severity = "good"
	Warning Severity = "warning"
	Error   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case Error:
		return 0
	case Warning:
		return 1
	default:
		return 2
	}
}

// Feedback is the outcome of one check on one frame.
type Feedback struct {
	BodyPart  string   `json:"bodyPart"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	IsCorrect bool     `json:"isCorrect"`
}

func good(part, msg string) Feedback {
	return Feedback{BodyPart: part, Severity: Good, Message: msg, IsCorrect: true}
}

func warning(part, msg string) Feedback {
	return Feedback{BodyPart: part, Severity: Warning, Message: msg}
}

func fault(part, msg string) Feedback {
	return Feedback{BodyPart: part, Severity: Error, Message: msg}
}

// SortBySeverity returns a copy of fb ordered error, warning, good. Items of
// equal severity keep their original order.
func SortBySeverity(fb []Feedback) []Feedback {
	out := make([]Feedback, len(fb))
	copy(out, fb)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.rank() < out[j].Severity.rank()
	})
	return out
}

// FormScore is the rounded percentage of good items. The second result is
// false when fb is empty, which means "no score" rather than zero.
func FormScore(fb []Feedback) (int, bool) {
	if len(fb) == 0 {
		return 0, false
	}
	var n int
	for _, f := range fb {
		if f.Severity == Good {
			n++
		}
	}
	return int(math.Round(100 * float64(n) / float64(len(fb)))), true
}

// First returns the first item with the given severity.
func First(fb []Feedback, s Severity) (Feedback, bool) {
	for _, f := range fb {
		if f.Severity == s {
			return f, true
		}
	}
	return Feedback{}, false
}

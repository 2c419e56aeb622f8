// Package exercise defines the closed set of exercises the coach understands.
package exercise

import (
	"sort"
	"strings"
)

// Exercise identifies a supported movement.
type Exercise string

const (
	Squat         Exercise = "squat"
	Pushup        Exercise = "pushup"
	Deadlift      Exercise = "deadlift"
	ShoulderPress Exercise = "shoulderpress"
	BicepCurl     Exercise = "bicepcurl"
	Lunge         Exercise = "lunge"
	Plank         Exercise = "plank"
	General       Exercise = "general"
)

// Info describes an exercise for display.
type Info struct {
	ID          Exercise `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tip         string   `json:"tip,omitempty"`
	CountsReps  bool     `json:"countsReps"`
}

var catalog = []Info{
	{
		ID:          Squat,
		Name:        "Squat",
		Description: "Check knee depth and back position",
		Tip:         "Go down until your thighs are parallel to the ground",
		CountsReps:  true,
	},
	{
		ID:          Pushup,
		Name:        "Push-up",
		Description: "Check elbow angle and body alignment",
		Tip:         "Lower your chest close to the ground, then push up",
		CountsReps:  true,
	},
	{
		ID:          Deadlift,
		Name:        "Deadlift",
		Description: "Check hip hinge and back position",
		Tip:         "Hinge at hips, keep back straight, drive through heels",
		CountsReps:  true,
	},
	{
		ID:          ShoulderPress,
		Name:        "Shoulder Press",
		Description: "Check arm extension and core stability",
		Tip:         "Press weights overhead until arms are fully extended",
		CountsReps:  true,
	},
	{
		ID:          BicepCurl,
		Name:        "Bicep Curl",
		Description: "Check elbow position and full range",
		Tip:         "Curl weights up, keep elbows close to your body",
		CountsReps:  true,
	},
	{
		ID:          Lunge,
		Name:        "Lunge",
		Description: "Check knee position and torso alignment",
		Tip:         "Step forward and lower until your knee is at 90°",
		CountsReps:  true,
	},
	{
		ID:          Plank,
		Name:        "Plank",
		Description: "Check core engagement and hip position",
	},
	{
		ID:          General,
		Name:        "General Posture",
		Description: "Check overall body alignment",
	},
}

var aliases = map[string]Exercise{
	"push-up":        Pushup,
	"shoulder-press": ShoulderPress,
	"shoulder_press": ShoulderPress,
	"bicep-curl":     BicepCurl,
	"bicep_curl":     BicepCurl,
}

// Parse maps an identifier to an Exercise. Matching ignores case and
// surrounding space. Anything unrecognised becomes General.
func Parse(id string) Exercise {
	ex, ok := Lookup(id)
	if !ok {
		return General
	}
	return ex
}

// Lookup is like Parse but reports whether id was recognised.
func Lookup(id string) (Exercise, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if ex, ok := aliases[key]; ok {
		return ex, true
	}
	for _, info := range catalog {
		if string(info.ID) == key {
			return info.ID, true
		}
	}
	return "", false
}

// All returns every exercise in display order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns the sorted identifiers, mostly for help text.
func IDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, info := range catalog {
		ids = append(ids, string(info.ID))
	}
	sort.Strings(ids)
	return ids
}

// Describe returns the catalog entry for e. Unknown values describe General.
func Describe(e Exercise) Info {
	for _, info := range catalog {
		if info.ID == e {
			return info
		}
	}
	return catalog[len(catalog)-1]
}

// CountsReps reports whether repetitions are counted for e.
func (e Exercise) CountsReps() bool {
	return Describe(e).CountsReps
}

func (e Exercise) String() string {
	return string(e)
}

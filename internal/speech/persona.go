package speech

import (
	"fmt"
	"strconv"
	"strings"
)

// Persona shapes how cues are voiced.
type Persona struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

const (
	Coach         = "coach"
	DrillSergeant = "drill-sergeant"
	ZenMaster     = "zen-master"
)

var personas = map[string]Persona{
	Coach:         {ID: Coach, Name: "Coach", Rate: 1, Pitch: 1, Volume: 1},
	DrillSergeant: {ID: DrillSergeant, Name: "Drill Sergeant", Rate: 1.15, Pitch: 0.85, Volume: 1},
	ZenMaster:     {ID: ZenMaster, Name: "Zen Master", Rate: 0.85, Pitch: 1.1, Volume: 0.9},
}

// LookupPersona returns the persona with the given id, falling back to Coach.
func LookupPersona(id string) Persona {
	if p, ok := personas[strings.ToLower(strings.TrimSpace(id))]; ok {
		return p
	}
	return personas[Coach]
}

// Personas lists the available personas in a stable order.
func Personas() []Persona {
	return []Persona{personas[Coach], personas[DrillSergeant], personas[ZenMaster]}
}

// GoalReached is the line spoken when the rep goal for name is met.
func (p Persona) GoalReached(name string) string {
	switch p.ID {
	case DrillSergeant:
		return fmt.Sprintf("%s crushed! That's what I'm talking about!", name)
	case ZenMaster:
		return fmt.Sprintf("%s complete. Acknowledge your accomplishment with gratitude.", name)
	default:
		return fmt.Sprintf("%s complete. Well done!", name)
	}
}

// EspeakArgs renders the persona as espeak/espeak-ng flags: words per
// minute, pitch (0-99) and amplitude (0-200).
func (p Persona) EspeakArgs() []string {
	return []string{
		"-s", strconv.Itoa(int(175 * p.Rate)),
		"-p", strconv.Itoa(clamp(int(50*p.Pitch), 0, 99)),
		"-a", strconv.Itoa(clamp(int(100*p.Volume), 0, 200)),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

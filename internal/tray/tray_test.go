package tray

import (
	"strings"
	"testing"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/reps"
)

func TestRepsTitle(t *testing.T) {
	tests := []struct {
		name string
		u    app.Update
		want string
	}{
		{"empty", app.Update{}, "Reps: -"},
		{"plank", app.Update{Exercise: exercise.Plank}, "Reps: -"},
		{"counting", app.Update{Exercise: exercise.Squat, Reps: reps.State{Count: 3}, Goal: 10}, "Squat: 3 / 10"},
		{"goal", app.Update{Exercise: exercise.BicepCurl, Reps: reps.State{Count: 12}, Goal: 12, GoalReached: true}, "Bicep Curl: 12 / 12 ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repsTitle(tt.u); got != tt.want {
				t.Errorf("repsTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCueTitle(t *testing.T) {
	if got := cueTitle(""); got != "Last cue: none" {
		t.Errorf("cueTitle(\"\") = %q", got)
	}
	if got := cueTitle("Keep your back straight!"); got != "Last cue: Keep your back straight!" {
		t.Errorf("cueTitle() = %q", got)
	}

	long := strings.Repeat("a", 60)
	got := strings.TrimPrefix(cueTitle(long), "Last cue: ")
	if n := len([]rune(got)); n != maxCueLen {
		t.Errorf("truncated cue has %d runes, want %d", n, maxCueLen)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated cue %q has no ellipsis", got)
	}
}

func TestTray_BeforeReady(t *testing.T) {
	tr := New(false)
	if tr.IsEnabled() {
		t.Error("expected camera off")
	}

	var toggled []bool
	tr.OnToggle(func(enabled bool) { toggled = append(toggled, enabled) })
	tr.handleToggle()
	tr.handleToggle()
	if len(toggled) != 2 || !toggled[0] || toggled[1] {
		t.Errorf("toggle callbacks = %v, want [true false]", toggled)
	}

	tr.SetEnabled(true)
	if !tr.IsEnabled() {
		t.Error("SetEnabled(true) not applied")
	}

	// no menu yet; titles are kept for onReady
	tr.Show(app.Update{Exercise: exercise.Squat, Reps: reps.State{Count: 1}, Goal: 5}, "Go deeper!")
	if tr.reps != "Squat: 1 / 5" || tr.cue != "Last cue: Go deeper!" {
		t.Errorf("titles = %q, %q", tr.reps, tr.cue)
	}

	opened := false
	tr.OnOpen(func() { opened = true })
	tr.handleOpen()
	if !opened {
		t.Error("open callback not called")
	}
}

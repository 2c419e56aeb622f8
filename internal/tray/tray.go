// Package tray provides a system tray menu for the formcheck coach.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/exercise"
)

const maxCueLen = 40

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	reps     string
	cue      string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuReps   *systray.MenuItem
	menuCue    *systray.MenuItem
}

// New creates a Tray. enabled is the initial camera state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		reps:    repsTitle(app.Update{}),
		cue:     cueTitle(""),
	}
}

// OnToggle sets the callback function to be called when the camera is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the dashboard menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("FormCheck")
	systray.SetTooltip("FormCheck exercise coach")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Start or stop the camera")
	systray.AddSeparator()

	t.menuReps = systray.AddMenuItem(t.reps, "Repetitions this session")
	t.menuReps.Disable()
	t.menuCue = systray.AddMenuItem(t.cue, "Last spoken correction")
	t.menuCue.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit FormCheck")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetEnabled reflects a camera state change made elsewhere, e.g. from the
// dashboard or a failed start.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// Show displays the latest rep count and spoken cue. It is safe to call
// from an app subscriber.
func (t *Tray) Show(u app.Update, lastCue string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reps = repsTitle(u)
	t.cue = cueTitle(lastCue)
	if t.menuReps != nil {
		t.menuReps.SetTitle(t.reps)
	}
	if t.menuCue != nil {
		t.menuCue.SetTitle(t.cue)
	}
}

// IsEnabled returns the current camera state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Camera on"
	}
	return "○ Camera off"
}

func repsTitle(u app.Update) string {
	if u.Exercise == "" || !u.Exercise.CountsReps() {
		return "Reps: -"
	}
	name := exercise.Describe(u.Exercise).Name
	if u.GoalReached {
		return fmt.Sprintf("%s: %d / %d ✓", name, u.Reps.Count, u.Goal)
	}
	return fmt.Sprintf("%s: %d / %d", name, u.Reps.Count, u.Goal)
}

func cueTitle(cue string) string {
	if cue == "" {
		return "Last cue: none"
	}
	r := []rune(cue)
	if len(r) > maxCueLen {
		cue = string(r[:maxCueLen-1]) + "…"
	}
	return "Last cue: " + cue
}

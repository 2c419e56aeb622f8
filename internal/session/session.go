// Package session tracks an active workout and produces the record that is
// saved to history.
package session

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/posture"
)

// WorkoutSession is a finished workout.
type WorkoutSession struct {
	ID              string            `json:"id"`
	Date            time.Time         `json:"date"`
	Exercise        exercise.Exercise `json:"exercise"`
	Reps            int               `json:"reps"`
	FormScore       int               `json:"formScore"`
	DurationSeconds int               `json:"duration"`
}

// Recorder persists finished sessions.
type Recorder interface {
	Record(s WorkoutSession) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(WorkoutSession) error

func (f RecorderFunc) Record(s WorkoutSession) error { return f(s) }

// Tracker accumulates the form scores of an active session. It is not safe
// for concurrent use.
type Tracker struct {
	active  bool
	started time.Time
	scores  []int
}

// Start begins a new session at now, discarding any previous samples.
func (t *Tracker) Start(now time.Time) {
	t.active = true
	t.started = now
	t.scores = t.scores[:0]
}

// Stop deactivates the tracker and clears its samples.
func (t *Tracker) Stop() {
	t.active = false
	t.started = time.Time{}
	t.scores = t.scores[:0]
}

// Active reports whether a session is running.
func (t *Tracker) Active() bool {
	return t.active
}

// Observe feeds one evaluated frame. The first counted repetition starts the
// session; frames only contribute a score while it is active.
func (t *Tracker) Observe(fb []posture.Feedback, count int, now time.Time) {
	if !t.active && count > 0 {
		t.Start(now)
	}
	if !t.active {
		return
	}
	if score, ok := posture.FormScore(fb); ok {
		t.scores = append(t.scores, score)
	}
}

// Elapsed returns whole seconds since the session started, or 0 when idle.
func (t *Tracker) Elapsed(now time.Time) int {
	if !t.active {
		return 0
	}
	d := now.Sub(t.started)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// AverageFormScore is the rounded mean of all observed scores, 0 without
// samples.
func (t *Tracker) AverageFormScore() int {
	if len(t.scores) == 0 {
		return 0
	}
	var sum int
	for _, s := range t.scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(t.scores))))
}

// Samples is the number of scored frames so far.
func (t *Tracker) Samples() int {
	return len(t.scores)
}

// Snapshot builds the record for the current session without stopping it.
func (t *Tracker) Snapshot(ex exercise.Exercise, count int, now time.Time) WorkoutSession {
	return WorkoutSession{
		ID:              uuid.New().String(),
		Date:            now,
		Exercise:        ex,
		Reps:            count,
		FormScore:       t.AverageFormScore(),
		DurationSeconds: t.Elapsed(now),
	}
}

// Finish builds the record for the current session and stops tracking.
func (t *Tracker) Finish(ex exercise.Exercise, count int, now time.Time) WorkoutSession {
	ws := t.Snapshot(ex, count, now)
	t.Stop()
	return ws
}

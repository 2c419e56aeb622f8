package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/posture"
)

var (
	allGood = []posture.Feedback{
		{BodyPart: "knees", Severity: posture.Good, IsCorrect: true},
		{BodyPart: "back", Severity: posture.Good, IsCorrect: true},
	}
	halfGood = []posture.Feedback{
		{BodyPart: "knees", Severity: posture.Warning},
		{BodyPart: "back", Severity: posture.Good, IsCorrect: true},
	}
)

func TestTracker_AutoStartsOnFirstRep(t *testing.T) {
	var tr Tracker
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tr.Observe(allGood, 0, t0)
	assert.False(t, tr.Active())
	assert.Zero(t, tr.Samples(), "frames before the session are not scored")

	tr.Observe(halfGood, 1, t0.Add(2*time.Second))
	require.True(t, tr.Active())
	assert.Equal(t, 1, tr.Samples())
	assert.Equal(t, 0, tr.Elapsed(t0.Add(2*time.Second)))
	assert.Equal(t, 3, tr.Elapsed(t0.Add(5900*time.Millisecond)))
}

func TestTracker_AverageFormScore(t *testing.T) {
	var tr Tracker
	now := time.Now()
	tr.Start(now)

	assert.Equal(t, 0, tr.AverageFormScore())

	tr.Observe(allGood, 0, now)
	tr.Observe(halfGood, 0, now)
	tr.Observe(halfGood, 0, now)
	// (100 + 50 + 50) / 3 = 66.67
	assert.Equal(t, 67, tr.AverageFormScore())

	tr.Observe(nil, 0, now)
	assert.Equal(t, 3, tr.Samples(), "frames without feedback carry no score")
}

func TestTracker_Finish(t *testing.T) {
	var tr Tracker
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tr.Start(t0)
	tr.Observe(allGood, 1, t0)
	tr.Observe(halfGood, 2, t0)

	end := t0.Add(90*time.Second + 700*time.Millisecond)
	ws := tr.Finish(exercise.Squat, 2, end)

	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, end, ws.Date)
	assert.Equal(t, exercise.Squat, ws.Exercise)
	assert.Equal(t, 2, ws.Reps)
	assert.Equal(t, 75, ws.FormScore)
	assert.Equal(t, 90, ws.DurationSeconds)

	assert.False(t, tr.Active())
	assert.Zero(t, tr.Samples())

	other := tr.Finish(exercise.Squat, 0, end)
	assert.NotEqual(t, ws.ID, other.ID)
}

func TestTracker_SnapshotKeepsRunning(t *testing.T) {
	var tr Tracker
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tr.Start(t0)
	tr.Observe(halfGood, 1, t0)

	ws := tr.Snapshot(exercise.Lunge, 1, t0.Add(10*time.Second))
	assert.Equal(t, 50, ws.FormScore)
	assert.Equal(t, 10, ws.DurationSeconds)
	assert.True(t, tr.Active())
	assert.Equal(t, 1, tr.Samples())
}

func TestTracker_StartDiscardsSamples(t *testing.T) {
	var tr Tracker
	now := time.Now()

	tr.Start(now)
	tr.Observe(halfGood, 0, now)
	tr.Start(now)
	assert.Zero(t, tr.Samples())

	tr.Stop()
	assert.Equal(t, 0, tr.Elapsed(now.Add(time.Hour)))
}

func TestRecorderFunc(t *testing.T) {
	var got WorkoutSession
	rec := RecorderFunc(func(ws WorkoutSession) error {
		got = ws
		return errors.New("disk full")
	})

	err := rec.Record(WorkoutSession{ID: "x", Reps: 3})
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 3, got.Reps)
}

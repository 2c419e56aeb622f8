package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ayusman/formcheck/internal/detector"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/metrics"
	"github.com/ayusman/formcheck/internal/pose"
	"github.com/ayusman/formcheck/internal/reps"
	"github.com/ayusman/formcheck/internal/session"
	"github.com/ayusman/formcheck/internal/speech"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const goDeeper = "Go deeper! Bend your knees more."

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// goals defaults to 10 like the store does.
type goals map[exercise.Exercise]int

func (g goals) Get(ex exercise.Exercise) (int, error) {
	if n, ok := g[ex]; ok {
		return n, nil
	}
	return 10, nil
}

type harness struct {
	app     *App
	voice   *speech.MockSynthesizer
	tones   *speech.MockTonePlayer
	clock   *fakeClock
	metrics *metrics.Manager
	saved   []session.WorkoutSession
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		voice:   speech.NewMockSynthesizer(),
		tones:   speech.NewMockTonePlayer(),
		clock:   newFakeClock(),
		metrics: metrics.NewTestManager(),
	}
	cfg.Voice = h.voice
	cfg.Tones = h.tones
	cfg.Metrics = h.metrics
	if cfg.Goals == nil {
		cfg.Goals = goals{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = session.RecorderFunc(func(ws session.WorkoutSession) error {
			h.saved = append(h.saved, ws)
			return nil
		})
	}

	h.app = New(cfg)
	h.app.now = h.clock.Now
	t.Cleanup(func() { h.app.Close() })
	return h
}

// feed evaluates each pose one second apart.
func (h *harness) feed(t *testing.T, poses ...pose.Landmarks) Update {
	t.Helper()
	var last Update
	for _, l := range poses {
		h.clock.Advance(time.Second)
		u, ok := h.app.HandleLandmarks(l, h.clock.Now().UnixMilli())
		require.True(t, ok)
		last = u
	}
	return last
}

var (
	standing = pose.StandingLandmarks()
	bottom   = pose.SquatBottomLandmarks()
)

func TestApp_CountsRepsAndAnnounces(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat, VoiceEnabled: true, SoundEnabled: true})
	require.NoError(t, h.app.Start(context.Background()))

	u := h.feed(t, standing)
	assert.Equal(t, 0, u.Reps.Count)
	require.NotNil(t, u.FormScore)
	assert.Equal(t, 50, *u.FormScore)
	assert.False(t, u.SessionActive)

	u = h.feed(t, bottom, standing)
	assert.Equal(t, reps.State{Count: 1, Current: reps.Up, Last: reps.Up}, u.Reps)
	assert.Equal(t, 10, u.Goal)
	assert.Equal(t, 10.0, u.Completion)
	assert.True(t, u.SessionActive)
	assert.False(t, u.GoalReached)

	assert.Equal(t, []string{goDeeper, "1"}, h.voice.Spoken())
	assert.Equal(t, []speech.Tone{speech.ToneRep}, h.tones.Played())

	st := h.app.Snapshot()
	assert.True(t, st.Running)
	assert.Equal(t, goDeeper, st.LastCue)
	assert.Equal(t, 1, st.Update.Reps.Count)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CounterReps.WithLabelValues("squat")))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.CounterFrames.WithLabelValues(metrics.FrameEvaluated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CounterCues.WithLabelValues(metrics.CueCorrection)))
}

func TestApp_SortedFeedback(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat})
	require.NoError(t, h.app.Start(context.Background()))

	leaning := standing.Bend(pose.LeftHip, pose.LeftShoulder, pose.LeftEar, 120)
	u := h.feed(t, leaning)
	require.Len(t, u.Feedback, 2)
	assert.Equal(t, "knees", u.Feedback[0].BodyPart)
	assert.Equal(t, "back", u.SortedFeedback[0].BodyPart, "the error comes first")
	assert.Equal(t, "knees", u.SortedFeedback[1].BodyPart)
	require.NotNil(t, u.FormScore)
	assert.Equal(t, 0, *u.FormScore)
}

func TestApp_GoalReachedOnce(t *testing.T) {
	h := newHarness(t, Config{
		Exercise:     exercise.Squat,
		Goals:        goals{exercise.Squat: 2},
		VoiceEnabled: true,
		SoundEnabled: true,
	})
	require.NoError(t, h.app.Start(context.Background()))

	h.feed(t, standing, bottom, standing, bottom)
	u := h.feed(t, standing)
	assert.Equal(t, 2, u.Reps.Count)
	assert.True(t, u.GoalReached)
	assert.Equal(t, 100.0, u.Completion)

	u = h.feed(t, bottom, standing)
	assert.Equal(t, 3, u.Reps.Count)
	assert.Equal(t, 100.0, u.Completion)

	assert.Equal(t, []string{goDeeper, "1", "Squat complete. Well done!", "3"}, h.voice.Spoken())
	assert.Equal(t, []speech.Tone{speech.ToneRep, speech.ToneGoal, speech.ToneRep}, h.tones.Played())
}

func TestApp_CountNotCutOffByCorrection(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat, VoiceEnabled: true})
	require.NoError(t, h.app.Start(context.Background()))

	const leanMsg = "Keep your back straight! Don't lean forward too much."
	leaning := bottom.Bend(pose.LeftHip, pose.LeftShoulder, pose.LeftEar, 140)

	at := func(d time.Duration, l pose.Landmarks) {
		t.Helper()
		h.clock.Advance(d)
		_, ok := h.app.HandleLandmarks(l, h.clock.Now().UnixMilli())
		require.True(t, ok)
	}

	at(0, leaning)
	at(3*time.Second, standing)
	at(33*time.Millisecond, standing)
	assert.Equal(t, []string{leanMsg, "1"}, h.voice.Spoken())

	// corrections resume once the count has had its cooldown
	at(3*time.Second, standing)
	assert.Equal(t, []string{leanMsg, "1", goDeeper}, h.voice.Spoken())
}

func TestApp_GoalChanged(t *testing.T) {
	g := goals{}
	h := newHarness(t, Config{Exercise: exercise.Squat, Goals: g, SoundEnabled: true})
	require.NoError(t, h.app.Start(context.Background()))

	h.feed(t, standing, bottom, standing)

	var got []Update
	unsubscribe := h.app.Subscribe(func(u Update) { got = append(got, u) })
	defer unsubscribe()

	g[exercise.Squat] = 1
	h.app.GoalChanged(exercise.Pushup)
	assert.Empty(t, got, "other exercises are ignored")

	h.app.GoalChanged(exercise.Squat)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Goal)
	assert.True(t, got[0].GoalReached)

	// the fanfare plays on the next evaluated frame
	h.feed(t, standing)
	assert.Equal(t, []speech.Tone{speech.ToneRep, speech.ToneGoal}, h.tones.Played())
}

func TestApp_VoiceAndSoundToggles(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat})
	require.NoError(t, h.app.Start(context.Background()))

	h.feed(t, standing, bottom, standing)
	assert.Empty(t, h.voice.Spoken())
	assert.Empty(t, h.tones.Played())

	h.app.SetVoiceEnabled(true)
	h.app.SetSoundEnabled(true)
	h.feed(t, bottom, standing)
	assert.Equal(t, []string{"2"}, h.voice.Spoken())
	assert.Equal(t, []speech.Tone{speech.ToneRep}, h.tones.Played())

	st := h.app.Snapshot()
	assert.True(t, st.VoiceEnabled)
	assert.True(t, st.SoundEnabled)
}

func TestApp_SetPersona(t *testing.T) {
	h := newHarness(t, Config{
		Exercise:     exercise.Squat,
		Goals:        goals{exercise.Squat: 1},
		VoiceEnabled: true,
	})
	require.NoError(t, h.app.Start(context.Background()))

	h.app.SetPersona(speech.LookupPersona(speech.DrillSergeant))
	h.feed(t, bottom, standing)

	assert.Equal(t, []string{"Squat crushed! That's what I'm talking about!"}, h.voice.Spoken())
	assert.Equal(t, speech.DrillSergeant, h.app.Snapshot().Persona)
}

func TestApp_NoPoseKeepsLastUpdate(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat})
	require.NoError(t, h.app.Start(context.Background()))

	u := h.feed(t, standing)

	_, ok := h.app.HandleLandmarks(nil, 0)
	assert.False(t, ok)
	_, ok = h.app.HandleLandmarks(pose.Landmarks{}, 0)
	assert.False(t, ok)

	assert.Equal(t, u, h.app.Snapshot().Update)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.CounterFrames.WithLabelValues(metrics.FrameNoPose)))
}

func TestApp_IgnoresLandmarksWhenStopped(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat, VoiceEnabled: true})

	_, ok := h.app.HandleLandmarks(standing, 0)
	assert.False(t, ok, "not started")

	require.NoError(t, h.app.Start(context.Background()))
	h.feed(t, bottom)
	require.NoError(t, h.app.Stop())
	assert.False(t, h.app.Running())

	_, ok = h.app.HandleLandmarks(standing, 0)
	assert.False(t, ok, "stopped")
	assert.Empty(t, h.voice.Spoken())
	assert.Equal(t, reps.Down, h.app.Snapshot().Update.Reps.Last)
}

func TestApp_ResetDiscardsInFlightFrame(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat, VoiceEnabled: true})
	require.NoError(t, h.app.Start(context.Background()))

	h.feed(t, standing, bottom)

	// a frame that would complete a rep is evaluated, then the user resets
	fs, ok := h.app.frameState()
	require.True(t, ok)
	ev := evaluate(fs, standing)
	require.Equal(t, 1, ev.next.Count)

	h.app.Reset()

	_, ok = h.app.commit(fs, ev, 0)
	assert.False(t, ok)

	st := h.app.Snapshot()
	assert.Equal(t, reps.Initial(), st.Update.Reps)
	assert.True(t, st.Update.SessionActive, "reset starts a fresh session")
	assert.NotContains(t, h.voice.Spoken(), "1")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CounterFrames.WithLabelValues(metrics.FrameStale)))

	// the next frame counts against the reset state
	u := h.feed(t, standing)
	assert.Equal(t, 0, u.Reps.Count)
}

func TestApp_SetExercise(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat, Goals: goals{exercise.Pushup: 20}})
	require.NoError(t, h.app.Start(context.Background()))

	h.feed(t, standing, bottom)
	fs, _ := h.app.frameState()
	ev := evaluate(fs, standing)

	var got []Update
	h.app.Subscribe(func(u Update) { got = append(got, u) })

	assert.Equal(t, exercise.Pushup, h.app.SetExercise("push-up"))
	require.Len(t, got, 1)
	assert.Equal(t, exercise.Pushup, got[0].Exercise)
	assert.Equal(t, reps.Initial(), got[0].Reps)
	assert.Equal(t, 20, got[0].Goal)
	assert.Nil(t, got[0].Feedback)

	_, ok := h.app.commit(fs, ev, 0)
	assert.False(t, ok, "squat result must not land on the push-up counter")

	u := h.feed(t, standing)
	assert.Equal(t, exercise.Pushup, u.Exercise)
	assert.Equal(t, 0, u.Reps.Count)

	assert.Equal(t, exercise.General, h.app.SetExercise("jumping-jacks"))
	assert.Equal(t, exercise.General, h.app.Exercise())
	assert.Equal(t, 0, h.app.Snapshot().Update.Goal, "form-only exercises have no goal")
	u = h.feed(t, bottom, standing, bottom, standing)
	assert.Equal(t, reps.Initial(), u.Reps, "general never counts")
	assert.NotEmpty(t, u.Feedback)
}

func TestApp_SaveSession(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat})
	require.NoError(t, h.app.Start(context.Background()))

	_, err := h.app.SaveSession()
	assert.ErrorIs(t, err, ErrNoReps)

	// the session starts with the first rep; standing scores 50
	h.feed(t, standing, bottom, standing)
	h.clock.Advance(30 * time.Second)

	ws, err := h.app.SaveSession()
	require.NoError(t, err)
	assert.Equal(t, exercise.Squat, ws.Exercise)
	assert.Equal(t, 1, ws.Reps)
	assert.Equal(t, 50, ws.FormScore)
	assert.Equal(t, 30, ws.DurationSeconds)
	assert.Equal(t, h.clock.Now(), ws.Date)
	require.Len(t, h.saved, 1)
	assert.Equal(t, ws, h.saved[0])

	st := h.app.Snapshot()
	assert.Equal(t, 0, st.Update.Reps.Count)
	assert.False(t, st.Update.SessionActive)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CounterSessions))
}

func TestApp_SaveSession_RecorderError(t *testing.T) {
	failing := session.RecorderFunc(func(session.WorkoutSession) error {
		return errors.New("disk full")
	})
	h := newHarness(t, Config{Exercise: exercise.Squat, Recorder: failing})
	require.NoError(t, h.app.Start(context.Background()))
	h.feed(t, bottom, standing)

	_, err := h.app.SaveSession()
	require.Error(t, err)

	st := h.app.Snapshot()
	assert.Equal(t, 1, st.Update.Reps.Count, "nothing is lost when saving fails")
	assert.True(t, st.Update.SessionActive)
}

func TestApp_SaveSession_RecordsOutsideLock(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	slow := session.RecorderFunc(func(session.WorkoutSession) error {
		close(entered)
		<-release
		return nil
	})
	h := newHarness(t, Config{Exercise: exercise.Squat, Recorder: slow})
	require.NoError(t, h.app.Start(context.Background()))
	h.feed(t, bottom, standing)

	type result struct {
		ws  session.WorkoutSession
		err error
	}
	saved := make(chan result, 1)
	go func() {
		ws, err := h.app.SaveSession()
		saved <- result{ws, err}
	}()
	<-entered

	responsive := make(chan struct{})
	go func() {
		defer close(responsive)
		h.app.Snapshot()
		h.app.HandleLandmarks(bottom, h.clock.Now().UnixMilli())
		h.app.SetExercise(string(exercise.Pushup))
	}()
	select {
	case <-responsive:
	case <-time.After(time.Second):
		t.Fatal("frames and snapshots blocked while the session was being written")
	}

	close(release)
	r := <-saved
	require.NoError(t, r.err)
	assert.Equal(t, exercise.Squat, r.ws.Exercise)
	assert.Equal(t, 1, r.ws.Reps)

	// the exercise change already started a new session
	st := h.app.Snapshot()
	assert.Equal(t, exercise.Pushup, st.Exercise)
	assert.Equal(t, 0, st.Update.Reps.Count)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CounterSessions))
}

func TestApp_SaveSession_NoRecorder(t *testing.T) {
	a := New(Config{})
	_, err := a.SaveSession()
	assert.ErrorIs(t, err, ErrNoRecorder)
}

func TestApp_StartFailure(t *testing.T) {
	t.Run("detector", func(t *testing.T) {
		det := detector.NewMockDetector()
		det.SetStartError(errors.New("model missing"))

		h := newHarness(t, Config{Detector: det})
		err := h.app.Start(context.Background())
		require.ErrorIs(t, err, ErrFeedbackUnavailable)
		assert.False(t, h.app.Running())

		st := h.app.Snapshot()
		assert.True(t, st.FeedbackUnavailable)
		assert.Contains(t, st.Error, "model missing")

		// a later successful start clears the condition
		det.SetStartError(nil)
		require.NoError(t, h.app.Start(context.Background()))
		assert.False(t, h.app.Snapshot().FeedbackUnavailable)
	})
}

func TestApp_StartIsIdempotent(t *testing.T) {
	h := newHarness(t, Config{})
	require.NoError(t, h.app.Start(context.Background()))
	require.NoError(t, h.app.Start(context.Background()))
	require.NoError(t, h.app.Stop())
	require.NoError(t, h.app.Stop())
}

func TestApp_Unsubscribe(t *testing.T) {
	h := newHarness(t, Config{Exercise: exercise.Squat})
	require.NoError(t, h.app.Start(context.Background()))

	calls := 0
	unsubscribe := h.app.Subscribe(func(Update) { calls++ })
	h.feed(t, standing)
	unsubscribe()
	h.feed(t, standing)

	assert.Equal(t, 1, calls)
}

func TestApp_Close(t *testing.T) {
	h := newHarness(t, Config{})
	require.NoError(t, h.app.Start(context.Background()))
	require.NoError(t, h.app.Close())
	assert.True(t, h.voice.Closed())
}

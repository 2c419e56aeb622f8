package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/capture"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/metrics"
	"github.com/ayusman/formcheck/internal/overlay"
	"github.com/ayusman/formcheck/internal/pose"
	"github.com/ayusman/formcheck/internal/posture"
	"github.com/ayusman/formcheck/internal/reps"
	"github.com/ayusman/formcheck/internal/speech"
)

// run is the frame loop. Ticks that arrive while a frame is still being
// processed are dropped by the ticker.
func (a *App) run(ctx context.Context, done chan struct{}, started time.Time) {
	defer close(done)

	ticker := time.NewTicker(a.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.processFrame(ctx, started)
		}
	}
}

// processFrame runs one iteration. Every failure skips the frame.
func (a *App) processFrame(ctx context.Context, started time.Time) {
	frame, err := a.cfg.Camera.ReadFrame()
	if err != nil {
		if errors.Is(err, capture.ErrFrameNotReady) {
			a.metrics.CounterFrames.WithLabelValues(metrics.FrameNotReady).Inc()
			return
		}
		a.metrics.CounterFrames.WithLabelValues(metrics.FrameError).Inc()
		log.WithError(err).Debug("failed to read frame")
		return
	}
	defer frame.Close()

	if ctx.Err() != nil {
		return
	}
	if a.cfg.Motion != nil {
		if ok, _ := a.cfg.Motion.Allow(frame); !ok {
			a.metrics.CounterFrames.WithLabelValues(metrics.FrameStill).Inc()
			return
		}
	}

	ts := a.now().Sub(started).Milliseconds()
	detectStart := time.Now()
	landmarks, err := a.cfg.Detector.Detect(frame, ts)
	a.metrics.HistDetectDuration.Observe(time.Since(detectStart).Seconds())
	if err != nil {
		a.metrics.CounterFrames.WithLabelValues(metrics.FrameError).Inc()
		log.WithError(err).Warn("pose detection failed")
		return
	}
	if ctx.Err() != nil {
		return
	}

	u, ok := a.HandleLandmarks(landmarks, ts)

	if a.cfg.Preview {
		var fb []posture.Feedback
		if ok {
			fb = u.Feedback
		}
		jpeg, err := overlay.Annotate(frame, landmarks, fb)
		if err != nil {
			log.WithError(err).Debug("failed to render preview")
			return
		}
		a.setFrame(jpeg)
	}
}

// HandleLandmarks evaluates one landmark set against the selected exercise
// and publishes the result. It is called by the frame loop and by clients
// that run pose detection themselves. It reports false when nothing was
// committed: no session is running, no pose was found, or a reset or an
// exercise change happened while the frame was being evaluated.
func (a *App) HandleLandmarks(l pose.Landmarks, timestampMs int64) (Update, bool) {
	a.pipeMu.Lock()
	defer a.pipeMu.Unlock()

	fs, ok := a.frameState()
	if !ok {
		return Update{}, false
	}
	if l.Empty() {
		a.metrics.CounterFrames.WithLabelValues(metrics.FrameNoPose).Inc()
		return Update{}, false
	}

	evalStart := time.Now()
	ev := evaluate(fs, l)
	a.metrics.HistPipelineDuration.Observe(time.Since(evalStart).Seconds())

	return a.commit(fs, ev, timestampMs)
}

// frameState is what a frame is evaluated against.
type frameState struct {
	exercise   exercise.Exercise
	counter    reps.State
	generation uint64
}

type evaluation struct {
	feedback []posture.Feedback
	next     reps.State
}

func (a *App) frameState() (frameState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return frameState{}, false
	}
	return frameState{exercise: a.exercise, counter: a.counter, generation: a.generation}, true
}

func evaluate(fs frameState, l pose.Landmarks) evaluation {
	return evaluation{
		feedback: posture.Evaluate(fs.exercise, l),
		next:     reps.Advance(reps.DetectPhase(fs.exercise, l), fs.counter),
	}
}

// commit stores ev unless the state it was computed from is gone, then
// voices and publishes the result.
func (a *App) commit(fs frameState, ev evaluation, timestampMs int64) (Update, bool) {
	a.mu.Lock()
	if fs.generation != a.generation || !a.running {
		a.mu.Unlock()
		a.metrics.CounterFrames.WithLabelValues(metrics.FrameStale).Inc()
		return Update{}, false
	}

	ex, fb, next, prev := fs.exercise, ev.feedback, ev.next, fs.counter
	now := a.now()
	a.counter = next
	a.tracker.Observe(fb, next.Count, now)

	an := announcement{ctx: a.sessionCtx}
	repDone := next.Count > prev.Count
	goalNow := a.goal > 0 && next.Count >= a.goal && !a.goalAnnounced
	if goalNow {
		a.goalAnnounced = true
	}
	switch {
	case goalNow:
		an.tone, an.play = speech.ToneGoal, a.soundEnabled
		if a.voiceEnabled {
			an.text, an.kind = a.persona.GoalReached(exercise.Describe(ex).Name), metrics.CueGoal
			a.throttle.hold(now)
		}
	case repDone:
		an.tone, an.play = speech.ToneRep, a.soundEnabled
		if a.voiceEnabled {
			an.text, an.kind = strconv.Itoa(next.Count), metrics.CueRepCount
			// a correction on the next frame would cut the count off
			a.throttle.hold(now)
		}
	case a.voiceEnabled:
		if msg, ok := a.throttle.next(fb, now); ok {
			an.text, an.kind = msg, metrics.CueCorrection
			a.lastCue = msg
		}
	}

	u := a.composeLocked(fb, now)
	u.TimestampMs = timestampMs
	a.last = u
	subs := a.subscribersLocked()
	a.mu.Unlock()

	a.metrics.CounterFrames.WithLabelValues(metrics.FrameEvaluated).Inc()
	if repDone {
		a.metrics.CounterReps.WithLabelValues(string(ex)).Add(float64(next.Count - prev.Count))
	}
	if u.FormScore != nil {
		a.metrics.GaugeFormScore.Set(float64(*u.FormScore))
	}

	a.announce(an)
	publish(subs, u)
	return u, true
}

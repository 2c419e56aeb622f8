// Package app runs the coaching session: it reads frames, detects the pose,
// grades the form, counts repetitions and voices the results.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/ayusman/formcheck/internal/capture"
	"github.com/ayusman/formcheck/internal/detector"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/metrics"
	"github.com/ayusman/formcheck/internal/posture"
	"github.com/ayusman/formcheck/internal/reps"
	"github.com/ayusman/formcheck/internal/session"
	"github.com/ayusman/formcheck/internal/speech"
)

// DefaultFrameInterval paces the frame loop.
const DefaultFrameInterval = time.Second / capture.DefaultFPS

var (
	// ErrFeedbackUnavailable is returned by Start when the camera or the pose
	// detector cannot be brought up. The session does not run.
	ErrFeedbackUnavailable = errors.New("feedback unavailable")
	// ErrNoReps is returned when saving a session without a single rep.
	ErrNoReps = errors.New("no repetitions to save")
	// ErrNoRecorder is returned when saving without a configured recorder.
	ErrNoRecorder = errors.New("no session recorder configured")
)

// GoalProvider returns the rep goal of an exercise.
type GoalProvider interface {
	Get(ex exercise.Exercise) (int, error)
}

// Config wires the collaborators of an App. Camera and Detector may be nil
// when landmarks arrive through HandleLandmarks instead of the frame loop.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Motion, when set, holds back frames that did not change enough.
	Motion   *capture.MotionGate
	Voice    speech.Synthesizer
	Tones    speech.TonePlayer
	Goals    GoalProvider
	Recorder session.Recorder
	Metrics  *metrics.Manager

	Exercise       exercise.Exercise
	Persona        speech.Persona
	VoiceEnabled   bool
	SoundEnabled   bool
	Preview        bool
	FrameInterval  time.Duration
	SpeechCooldown time.Duration
}

// Update is published after every evaluated frame and after state changes
// made through the App's methods.
type Update struct {
	Exercise       exercise.Exercise  `json:"exercise"`
	Feedback       []posture.Feedback `json:"feedback"`
	SortedFeedback []posture.Feedback `json:"sortedFeedback"`
	FormScore      *int               `json:"formScore,omitempty"`
	Reps           reps.State         `json:"reps"`
	Goal           int                `json:"goal"`
	Completion     float64            `json:"completion"`
	GoalReached    bool               `json:"goalReached"`
	SessionActive  bool               `json:"sessionActive"`
	ElapsedSeconds int                `json:"elapsedSeconds"`
	TimestampMs    int64              `json:"timestampMs"`
}

// Status describes the App for API clients.
type Status struct {
	Running             bool              `json:"running"`
	FeedbackUnavailable bool              `json:"feedbackUnavailable"`
	Error               string            `json:"error,omitempty"`
	Exercise            exercise.Exercise `json:"exercise"`
	VoiceEnabled        bool              `json:"voiceEnabled"`
	SoundEnabled        bool              `json:"soundEnabled"`
	Persona             string            `json:"persona"`
	LastCue             string            `json:"lastCue,omitempty"`
	Update              Update            `json:"update"`
}

// App is the feedback orchestrator.
type App struct {
	cfg     Config
	metrics *metrics.Manager
	now     func() time.Time

	// pipeMu serializes frame evaluation.
	pipeMu sync.Mutex
	// saveMu serializes SaveSession so a session is recorded once.
	saveMu sync.Mutex

	mu            sync.Mutex
	running       bool
	unavailable   error
	sessionCtx    context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	startedAt     time.Time
	exercise      exercise.Exercise
	counter       reps.State
	generation    uint64
	goal          int
	goalAnnounced bool
	tracker       session.Tracker
	throttle      *throttler
	voiceEnabled  bool
	soundEnabled  bool
	persona       speech.Persona
	lastCue       string
	last          Update
	frame         []byte
	subscribers   map[int]func(Update)
	nextSubID     int
}

// New creates an App. Nothing is started until Start is called.
func New(cfg Config) *App {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.Exercise == "" {
		cfg.Exercise = exercise.Squat
	}
	if cfg.Persona.ID == "" {
		cfg.Persona = speech.LookupPersona(speech.Coach)
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewManager("formcheck", "app", prometheus.NewRegistry())
	}

	a := &App{
		cfg:          cfg,
		metrics:      m,
		now:          time.Now,
		exercise:     exercise.Parse(string(cfg.Exercise)),
		counter:      reps.Initial(),
		throttle:     newThrottler(cfg.SpeechCooldown),
		voiceEnabled: cfg.VoiceEnabled,
		soundEnabled: cfg.SoundEnabled,
		persona:      cfg.Persona,
		subscribers:  make(map[int]func(Update)),
	}
	a.goal = a.lookupGoal(a.exercise)
	a.last = a.composeLocked(nil, a.now())
	return a
}

// Start opens the camera and the pose detector and begins the frame loop.
// Without a camera, Start only opens a session for HandleLandmarks. A setup
// failure is reported as ErrFeedbackUnavailable and leaves the App stopped.
// Calling Start on a running App is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	if err := a.openSourcesLocked(); err != nil {
		a.unavailable = err
		log.WithError(err).Warn("coaching feedback unavailable")
		return fmt.Errorf("%w: %v", ErrFeedbackUnavailable, err)
	}
	a.unavailable = nil

	if a.cfg.Motion != nil {
		a.cfg.Motion.Reset()
	}
	a.sessionCtx, a.cancel = context.WithCancel(ctx)
	a.startedAt = a.now()
	a.throttle.reset()
	a.lastCue = ""
	a.running = true
	a.metrics.GaugeCameraActive.Set(1)

	if a.cfg.Camera != nil && a.cfg.Detector != nil {
		a.done = make(chan struct{})
		go a.run(a.sessionCtx, a.done, a.startedAt)
	}

	log.WithField("exercise", a.exercise).Info("coaching session started")
	return nil
}

func (a *App) openSourcesLocked() error {
	if a.cfg.Detector != nil {
		if err := a.cfg.Detector.Start(); err != nil {
			return fmt.Errorf("start pose detector: %w", err)
		}
	}
	if a.cfg.Camera != nil {
		if err := a.cfg.Camera.Open(); err != nil {
			if a.cfg.Detector != nil {
				_ = a.cfg.Detector.Close()
			}
			return fmt.Errorf("open camera: %w", err)
		}
	}
	return nil
}

// Stop halts the frame loop and releases the camera and the detector. No
// speech or tone is started by this session once Stop returns.
func (a *App) Stop() error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.cancel()
	done := a.done
	a.done = nil
	a.mu.Unlock()

	if done != nil {
		<-done
	}
	// wait out an evaluation that started before the cancel
	a.pipeMu.Lock()
	a.pipeMu.Unlock()

	var err error
	if a.cfg.Camera != nil {
		err = multierr.Append(err, a.cfg.Camera.Close())
	}
	if a.cfg.Detector != nil {
		err = multierr.Append(err, a.cfg.Detector.Close())
	}

	a.mu.Lock()
	a.frame = nil
	a.mu.Unlock()

	a.metrics.GaugeCameraActive.Set(0)
	log.Info("coaching session stopped")
	return err
}

// Close stops the session and releases the voice.
func (a *App) Close() error {
	err := a.Stop()
	if a.cfg.Voice != nil {
		err = multierr.Append(err, a.cfg.Voice.Close())
	}
	if a.cfg.Motion != nil {
		err = multierr.Append(err, a.cfg.Motion.Close())
	}
	if w, ok := a.cfg.Tones.(interface{ Wait() }); ok {
		w.Wait()
	}
	return err
}

// Running reports whether a session is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Exercise returns the selected exercise.
func (a *App) Exercise() exercise.Exercise {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exercise
}

// SetExercise switches the exercise without stopping the camera. The counter
// and the session start over, and frames evaluated against the previous
// exercise are discarded.
func (a *App) SetExercise(id string) exercise.Exercise {
	ex := exercise.Parse(id)
	goal := a.lookupGoal(ex)

	a.mu.Lock()
	a.exercise = ex
	a.goal = goal
	a.counter = reps.Initial()
	a.generation++
	a.goalAnnounced = false
	a.tracker.Stop()
	a.throttle.reset()
	u := a.composeLocked(nil, a.now())
	a.last = u
	subs := a.subscribersLocked()
	a.mu.Unlock()

	log.WithField("exercise", ex).Info("exercise changed")
	publish(subs, u)
	return ex
}

// Reset zeroes the rep counter and starts a fresh session. Frames evaluated
// against the previous count are discarded.
func (a *App) Reset() {
	a.mu.Lock()
	now := a.now()
	a.counter = reps.Initial()
	a.generation++
	a.goalAnnounced = false
	a.tracker.Start(now)
	u := a.composeLocked(a.last.Feedback, now)
	a.last = u
	subs := a.subscribersLocked()
	a.mu.Unlock()

	publish(subs, u)
}

// SaveSession records the current workout and resets the counter.
func (a *App) SaveSession() (session.WorkoutSession, error) {
	if a.cfg.Recorder == nil {
		return session.WorkoutSession{}, ErrNoRecorder
	}

	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if a.counter.Count == 0 {
		a.mu.Unlock()
		return session.WorkoutSession{}, ErrNoReps
	}
	now := a.now()
	ws := a.tracker.Snapshot(a.exercise, a.counter.Count, now)
	gen := a.generation
	a.mu.Unlock()

	if err := a.cfg.Recorder.Record(ws); err != nil {
		return session.WorkoutSession{}, fmt.Errorf("record session: %w", err)
	}
	a.metrics.CounterSessions.Inc()

	log.WithFields(log.Fields{
		"exercise":  ws.Exercise,
		"reps":      ws.Reps,
		"formScore": ws.FormScore,
	}).Info("workout saved")

	a.mu.Lock()
	if a.generation != gen {
		// a reset or exercise change already started a new session
		a.mu.Unlock()
		return ws, nil
	}
	a.tracker.Stop()
	a.counter = reps.Initial()
	a.generation++
	a.goalAnnounced = false
	a.last = a.composeLocked(a.last.Feedback, a.now())
	u := a.last
	subs := a.subscribersLocked()
	a.mu.Unlock()

	publish(subs, u)
	return ws, nil
}

// SetVoiceEnabled turns spoken cues on or off.
func (a *App) SetVoiceEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.voiceEnabled = enabled
}

// SetSoundEnabled turns rep and goal tones on or off.
func (a *App) SetSoundEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.soundEnabled = enabled
}

// SetPersona changes the coaching voice.
func (a *App) SetPersona(p speech.Persona) {
	a.mu.Lock()
	a.persona = p
	a.mu.Unlock()

	if v, ok := a.cfg.Voice.(interface{ SetPersona(speech.Persona) }); ok {
		v.SetPersona(p)
	}
}

// GoalChanged reloads the goal of ex when it is the selected exercise.
func (a *App) GoalChanged(ex exercise.Exercise) {
	if ex != a.Exercise() {
		return
	}
	goal := a.lookupGoal(ex)

	a.mu.Lock()
	if ex != a.exercise {
		a.mu.Unlock()
		return
	}
	a.goal = goal
	if a.counter.Count < goal {
		a.goalAnnounced = false
	}
	u := a.composeLocked(a.last.Feedback, a.now())
	a.last = u
	subs := a.subscribersLocked()
	a.mu.Unlock()

	publish(subs, u)
}

// Snapshot returns the current status.
func (a *App) Snapshot() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Status{
		Running:      a.running,
		Exercise:     a.exercise,
		VoiceEnabled: a.voiceEnabled,
		SoundEnabled: a.soundEnabled,
		Persona:      a.persona.ID,
		LastCue:      a.lastCue,
		Update:       a.last,
	}
	if a.unavailable != nil {
		st.FeedbackUnavailable = true
		st.Error = a.unavailable.Error()
	}
	return st
}

// Subscribe registers fn for every Update. Subscribers are called on the
// pipeline goroutine and must not block. The returned func unsubscribes.
func (a *App) Subscribe(fn func(Update)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subscribers, id)
	}
}

// LatestFrame returns the most recent annotated preview as JPEG, or nil.
func (a *App) LatestFrame() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}

func (a *App) setFrame(jpeg []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		a.frame = jpeg
	}
}

func (a *App) lookupGoal(ex exercise.Exercise) int {
	if a.cfg.Goals == nil || !ex.CountsReps() {
		return 0
	}
	goal, err := a.cfg.Goals.Get(ex)
	if err != nil {
		log.WithError(err).WithField("exercise", ex).Warn("failed to load rep goal")
		return 0
	}
	return goal
}

// composeLocked builds an Update from fb and the current counter.
func (a *App) composeLocked(fb []posture.Feedback, now time.Time) Update {
	u := Update{
		Exercise:       a.exercise,
		Feedback:       fb,
		SortedFeedback: posture.SortBySeverity(fb),
		Reps:           a.counter,
		Goal:           a.goal,
		Completion:     reps.Completion(a.counter.Count, a.goal),
		GoalReached:    a.goal > 0 && a.counter.Count >= a.goal,
		SessionActive:  a.tracker.Active(),
		ElapsedSeconds: a.tracker.Elapsed(now),
	}
	if score, ok := posture.FormScore(fb); ok {
		u.FormScore = &score
	}
	return u
}

func (a *App) subscribersLocked() []func(Update) {
	out := make([]func(Update), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		out = append(out, fn)
	}
	return out
}

func publish(subs []func(Update), u Update) {
	for _, fn := range subs {
		fn(u)
	}
}

// announcement is what one evaluated frame asks the voice and sound
// channels to do.
type announcement struct {
	ctx  context.Context
	text string
	kind string
	tone speech.Tone
	play bool
}

func (a *App) announce(an announcement) {
	if an.ctx == nil {
		return
	}
	if an.text != "" && a.cfg.Voice != nil {
		if err := a.cfg.Voice.Speak(an.ctx, an.text); err != nil {
			log.WithError(err).WithField("cue", an.kind).Debug("speak failed")
		} else {
			a.metrics.CounterCues.WithLabelValues(an.kind).Inc()
		}
	}
	if an.play && a.cfg.Tones != nil {
		if err := a.cfg.Tones.Play(an.ctx, an.tone); err != nil {
			log.WithError(err).WithField("tone", an.tone.String()).Debug("tone failed")
		} else {
			a.metrics.CounterTones.WithLabelValues(an.tone.String()).Inc()
		}
	}
}

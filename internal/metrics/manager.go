// Package metrics holds the Prometheus collectors of the coaching pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame results.
const (
	FrameEvaluated = "evaluated"
	FrameNoPose    = "no_pose"
	FrameNotReady  = "not_ready"
	FrameError     = "error"
	FrameStale     = "stale"
	FrameStill     = "still"
)

// Cue kinds.
const (
	CueCorrection = "correction"
	CueRepCount   = "rep_count"
	CueGoal       = "goal"
)

type Manager struct {
	// counters
	CounterFrames     *prometheus.CounterVec
	CounterReps       *prometheus.CounterVec
	CounterCues       *prometheus.CounterVec
	CounterTones      *prometheus.CounterVec
	CounterSessions   prometheus.Counter
	CounterWSMessages prometheus.Counter

	// gauges
	GaugeFormScore    prometheus.Gauge
	GaugeCameraActive prometheus.Gauge
	GaugeFeedClients  prometheus.Gauge

	// histograms
	HistDetectDuration   prometheus.Histogram
	HistPipelineDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("formcheck", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("formcheck", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterFrames := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames",
		Help:      "The total number of processed frames by result",
	}, []string{"result"})
	counterReps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps",
		Help:      "The total number of counted repetitions",
	}, []string{"exercise"})
	counterCues := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "voice_cues",
		Help:      "The total number of spoken cues",
	}, []string{"kind"})
	counterTones := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "tones",
		Help:      "The total number of played sound cues",
	}, []string{"tone"})
	counterSessions := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions_saved",
		Help:      "The total number of saved workout sessions",
	})
	counterWSMessages := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "feed_messages",
		Help:      "The total number of updates sent to feed clients",
	})

	gaugeFormScore := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "form_score",
		Help:      "Form score of the latest evaluated frame",
	})
	gaugeCameraActive := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "camera_active",
		Help:      "Shows whether the coaching session is running",
	})
	gaugeFeedClients := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "feed_clients",
		Help:      "Current number of connected feed clients",
	})

	histDetectDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.03, 0.05,
				0.075, 0.1, 0.15, 0.25, 0.5, 1,
			},
			Name: "detect_duration_seconds",
			Help: "Duration of pose detection per frame in seconds",
		},
	)
	histPipelineDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.00001, 0.00005, 0.0001, 0.0005,
				0.001, 0.005, 0.01, 0.05,
			},
			Name: "pipeline_duration_seconds",
			Help: "Duration of classification and rep counting per frame in seconds",
		},
	)

	return &Manager{
		CounterFrames:        counterFrames,
		CounterReps:          counterReps,
		CounterCues:          counterCues,
		CounterTones:         counterTones,
		CounterSessions:      counterSessions,
		CounterWSMessages:    counterWSMessages,
		GaugeFormScore:       gaugeFormScore,
		GaugeCameraActive:    gaugeCameraActive,
		GaugeFeedClients:     gaugeFeedClients,
		HistDetectDuration:   histDetectDuration,
		HistPipelineDuration: histPipelineDuration,
	}
}

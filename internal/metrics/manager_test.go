package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Registers(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterFrames.WithLabelValues(FrameEvaluated).Inc()
	m.CounterReps.WithLabelValues("squat").Add(3)
	m.CounterCues.WithLabelValues(CueCorrection).Inc()
	m.CounterTones.WithLabelValues("rep").Inc()
	m.CounterSessions.Inc()
	m.CounterWSMessages.Inc()
	m.GaugeFormScore.Set(50)
	m.GaugeCameraActive.Set(1)
	m.GaugeFeedClients.Set(2)
	m.HistDetectDuration.Observe(0.02)
	m.HistPipelineDuration.Observe(0.0001)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "formcheck_test_frames")
	assert.Contains(t, names, "formcheck_test_reps")
	assert.Contains(t, names, "formcheck_test_form_score")
	assert.Contains(t, names, "formcheck_test_detect_duration_seconds")
	assert.Len(t, names, 11)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterReps.WithLabelValues("squat")))
}

func TestNewManager_Exposition(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	m.CounterFrames.WithLabelValues(FrameStale).Add(2)

	expected := `
# HELP formcheck_test_frames The total number of processed frames by result
# TYPE formcheck_test_frames counter
formcheck_test_frames{result="stale"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "formcheck_test_frames"))
}

func TestNewTestManager_Independent(t *testing.T) {
	a := NewTestManager()
	b := NewTestManager()

	a.CounterSessions.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CounterSessions))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CounterSessions))
}

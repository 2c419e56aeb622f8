package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"trace", log.TraceLevel},
		{"DEBUG", log.DebugLevel},
		{" info ", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.in))
		})
	}
}

func TestSetup_Stdout(t *testing.T) {
	logger := log.New()
	var out bytes.Buffer

	closer := setup(logger, Params{Level: "warn", FormatJSON: true}, &out)
	require.NoError(t, closer.Close())

	logger.Info("hidden")
	logger.WithField("exercise", "squat").Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "squat", entry["exercise"])
	assert.Equal(t, "warning", entry["level"])
}

func TestSetup_File(t *testing.T) {
	dir := t.TempDir()
	logger := log.New()
	var out bytes.Buffer

	closer := setup(logger, Params{Level: "debug", File: filepath.Join(dir, "formcheck"), ToStdout: true}, &out)
	logger.Debug("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "formcheck.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, out.String(), "to both")
}

func TestSetup_FileOnly(t *testing.T) {
	dir := t.TempDir()
	logger := log.New()
	var out bytes.Buffer

	closer := setup(logger, Params{File: filepath.Join(dir, "app.log")}, &out)
	logger.Info("file only")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
	assert.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestCombinedWriter(t *testing.T) {
	var a, b bytes.Buffer
	cw := &combinedWriter{writers: []io.Writer{&a, failingWriter{}, &b}}

	n, err := cw.Write([]byte("cue"))
	assert.Equal(t, 3, n)
	assert.EqualError(t, err, "broken pipe")
	assert.Equal(t, "cue", a.String())
	assert.Equal(t, "cue", b.String(), "later writers still get the data")
}

// Package detector finds body pose landmarks in camera frames.
package detector

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/ayusman/formcheck/internal/pose"
)

var (
	// ErrScriptNotFound is returned when the pose service script cannot be located.
	ErrScriptNotFound = errors.New("pose_service.py not found")
	// ErrNotStarted is returned by Detect before Start succeeded.
	ErrNotStarted = errors.New("detector not started")
)

// Detector locates a single body in a frame.
type Detector interface {
	// Start loads the model. It must succeed before Detect is called.
	Start() error

	// Detect returns the landmarks of the most prominent body, or nil when
	// no body is visible. timestampMs must increase between calls.
	Detect(frame *gocv.Mat, timestampMs int64) (pose.Landmarks, error)

	// Close releases the model. It is safe to call more than once.
	Close() error
}

// Config holds the pose model settings.
type Config struct {
	// Script is the path to pose_service.py. Empty means search the usual
	// locations.
	Script string

	// Python is the interpreter. Empty means a local venv or python3.
	Python string

	// MinDetectionConf is the minimum pose detection confidence (0.0-1.0).
	MinDetectionConf float64

	// MinTrackingConf is the minimum tracking confidence (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the settings the lite pose model is tuned for.
func DefaultConfig() Config {
	return Config{
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
	}
}

package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/formcheck/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// Tests queue landmark sets; each Detect call consumes the next one and
// the last set repeats once the queue is drained.
type MockDetector struct {
	mu       sync.Mutex
	queue    []pose.Landmarks
	err      error
	startErr error
	started  bool
	closed   bool
	calls    int
	lastTS   int64
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks replaces the queue with a single set returned on every call.
func (m *MockDetector) SetLandmarks(l pose.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = []pose.Landmarks{l}
}

// Queue appends landmark sets to be returned in order.
func (m *MockDetector) Queue(sets ...pose.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, sets...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetStartError makes Start fail with err.
func (m *MockDetector) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

func (m *MockDetector) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	m.closed = false
	return nil
}

// Detect returns the next queued set or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat, timestampMs int64) (pose.Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil, ErrNotStarted
	}
	m.calls++
	m.lastTS = timestampMs
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) == 0 {
		return nil, nil
	}

	next := m.queue[0]
	if len(m.queue) > 1 {
		m.queue = m.queue[1:]
	}
	return next.Clone(), nil
}

func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.closed = true
	return nil
}

// Calls returns how many frames reached Detect.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastTimestamp returns the timestamp passed to the latest Detect call.
func (m *MockDetector) LastTimestamp() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTS
}

// Closed reports whether Close has been called since the last Start.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

package speech

import (
	"context"
	"sync"
)

// MockSynthesizer records utterances instead of speaking them.
type MockSynthesizer struct {
	mu     sync.Mutex
	spoken []string
	err    error
	closed bool
}

// NewMockSynthesizer creates a new MockSynthesizer.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// SetError makes subsequent Speak calls fail with err.
func (m *MockSynthesizer) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Speak records text. Nothing is recorded once ctx is done or the mock is
// closed.
func (m *MockSynthesizer) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.spoken = append(m.spoken, text)
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (m *MockSynthesizer) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}

// Close marks the mock closed.
func (m *MockSynthesizer) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MockSynthesizer) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockTonePlayer records the tones it was asked to play.
type MockTonePlayer struct {
	mu     sync.Mutex
	played []Tone
}

// NewMockTonePlayer creates a new MockTonePlayer.
func NewMockTonePlayer() *MockTonePlayer {
	return &MockTonePlayer{}
}

// Play records t unless ctx is already done.
func (m *MockTonePlayer) Play(ctx context.Context, t Tone) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.played = append(m.played, t)
	m.mu.Unlock()
	return nil
}

// Played returns a copy of the recorded tones.
func (m *MockTonePlayer) Played() []Tone {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tone, len(m.played))
	copy(out, m.played)
	return out
}

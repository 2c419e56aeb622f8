// Package speech voices coaching cues and plays short sound cues through
// local command-line tools.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned when speaking through a closed synthesizer.
var ErrClosed = errors.New("synthesizer closed")

// Synthesizer speaks text. Speak returns once the utterance has started; a
// new utterance cuts off the one still playing. Cancelling ctx silences the
// utterance started with it.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Close() error
}

// CommandSynthesizer runs a text-to-speech program once per utterance, e.g.
// espeak-ng with the text as the last argument.
type CommandSynthesizer struct {
	command string
	persona Persona

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewCommandSynthesizer creates a synthesizer that runs command with the
// persona's espeak flags.
func NewCommandSynthesizer(command string, persona Persona) *CommandSynthesizer {
	return &CommandSynthesizer{
		command: command,
		persona: persona,
	}
}

// SetPersona changes the voice used by later utterances.
func (s *CommandSynthesizer) SetPersona(p Persona) {
	s.mu.Lock()
	s.persona = p
	s.mu.Unlock()
}

// Persona returns the current voice.
func (s *CommandSynthesizer) Persona() Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// Speak starts text and returns without waiting for it to finish.
func (s *CommandSynthesizer) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	uctx, cancel := context.WithCancel(ctx)
	args := append(s.persona.EspeakArgs(), text)
	cmd := exec.CommandContext(uctx, s.command, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", s.command, err)
	}
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := cmd.Wait(); err != nil && uctx.Err() == nil {
			log.WithField("command", s.command).Debugf("speech command failed: %v", err)
		}
	}()
	return nil
}

// Stop cuts off the current utterance, if any.
func (s *CommandSynthesizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Close stops any utterance and waits for its process to exit.
func (s *CommandSynthesizer) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

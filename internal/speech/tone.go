package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tone is a short non-verbal cue.
type Tone int

const (
	// ToneRep is the tick played on every counted repetition.
	ToneRep Tone = iota
	// ToneGoal is the fanfare played once when the rep goal is reached.
	ToneGoal
)

func (t Tone) String() string {
	switch t {
	case ToneRep:
		return "rep"
	case ToneGoal:
		return "goal"
	default:
		return "tone(" + strconv.Itoa(int(t)) + ")"
	}
}

// Note is one segment of a tone. Several frequencies sound together.
type Note struct {
	Freqs    []float64
	Duration time.Duration
	Gain     float64
}

// Notes returns the segments that make up t, played in order.
func (t Tone) Notes() []Note {
	switch t {
	case ToneRep:
		return []Note{{Freqs: []float64{880}, Duration: 100 * time.Millisecond, Gain: 0.3}}
	case ToneGoal:
		const step = 150 * time.Millisecond
		return []Note{
			{Freqs: []float64{523.25}, Duration: step, Gain: 0.4},
			{Freqs: []float64{659.25}, Duration: step, Gain: 0.4},
			{Freqs: []float64{783.99}, Duration: step, Gain: 0.4},
			{Freqs: []float64{1046.50}, Duration: step, Gain: 0.4},
			{Freqs: []float64{523.25, 659.25, 783.99}, Duration: 500 * time.Millisecond, Gain: 0.25},
		}
	default:
		return nil
	}
}

// TonePlayer plays sound cues without blocking the caller.
type TonePlayer interface {
	Play(ctx context.Context, t Tone) error
}

// CommandTonePlayer renders tones with SoX's play command.
type CommandTonePlayer struct {
	command string
	wg      sync.WaitGroup
}

// NewCommandTonePlayer creates a player that runs command (usually "play").
func NewCommandTonePlayer(command string) *CommandTonePlayer {
	return &CommandTonePlayer{command: command}
}

// SoxArgs returns the play arguments that synthesize n.
func SoxArgs(n Note) []string {
	args := []string{"-q", "-n", "synth", strconv.FormatFloat(n.Duration.Seconds(), 'f', 3, 64)}
	for _, f := range n.Freqs {
		args = append(args, "sine", strconv.FormatFloat(f, 'f', 2, 64))
	}
	if len(n.Freqs) > 1 {
		args = append(args, "remix", "-")
	}
	return append(args, "vol", strconv.FormatFloat(n.Gain, 'f', 2, 64))
}

// Play starts t in the background. The notes stop early when ctx is done.
func (p *CommandTonePlayer) Play(ctx context.Context, t Tone) error {
	notes := t.Notes()
	if len(notes) == 0 {
		return fmt.Errorf("unknown tone %v", t)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, n := range notes {
			cmd := exec.CommandContext(ctx, p.command, SoxArgs(n)...)
			if err := cmd.Run(); err != nil {
				if ctx.Err() == nil {
					log.WithField("tone", t.String()).Debugf("tone command failed: %v", err)
				}
				return
			}
		}
	}()
	return nil
}

// Wait blocks until every started tone has finished.
func (p *CommandTonePlayer) Wait() {
	p.wg.Wait()
}

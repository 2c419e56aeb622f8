package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solidFrame(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 240, 320, gocv.MatTypeCV8UC3)
}

func TestNewMotionGate(t *testing.T) {
	g := NewMotionGate(1.5, 10)
	defer g.Close()

	if g.threshold != 1.5 || g.maxSkip != 10 {
		t.Errorf("gate = %v/%d, want 1.5/10", g.threshold, g.maxSkip)
	}
	if g.hasRef {
		t.Error("gate should start without a reference frame")
	}
}

func TestMotionGate_FirstFramePasses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	frame := solidFrame(0)
	defer frame.Close()

	if ok, _ := g.Allow(&frame); !ok {
		t.Error("first frame should pass")
	}
}

func TestMotionGate_StillFramesHeld(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	frame := solidFrame(0)
	defer frame.Close()

	g.Allow(&frame)
	for i := 0; i < 5; i++ {
		ok, change := g.Allow(&frame)
		if ok {
			t.Fatalf("still frame %d passed, change = %f", i, change)
		}
		if change != 0 {
			t.Errorf("change = %f, want 0", change)
		}
	}
}

func TestMotionGate_MotionPasses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	black := solidFrame(0)
	defer black.Close()
	white := solidFrame(255)
	defer white.Close()

	g.Allow(&black)
	ok, change := g.Allow(&white)
	if !ok {
		t.Errorf("black to white should pass, change = %f", change)
	}
	if change < 50 {
		t.Errorf("change = %f, expected > 50%% for black to white", change)
	}

	// white is the new reference
	if ok, _ := g.Allow(&white); ok {
		t.Error("repeated white frame should be held")
	}
}

func TestMotionGate_MaxSkip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 3)
	defer g.Close()

	frame := solidFrame(40)
	defer frame.Close()

	var passed []bool
	for i := 0; i < 9; i++ {
		ok, _ := g.Allow(&frame)
		passed = append(passed, ok)
	}

	want := []bool{true, false, false, false, true, false, false, false, true}
	for i := range want {
		if passed[i] != want[i] {
			t.Fatalf("passed = %v, want %v", passed, want)
		}
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0, 0)
	defer g.Close()

	frame := solidFrame(0)
	defer frame.Close()

	g.Allow(&frame)
	g.Reset()
	if g.hasRef || !g.ref.Empty() {
		t.Error("Reset should drop the reference frame")
	}
	if ok, _ := g.Allow(&frame); !ok {
		t.Error("first frame after Reset should pass")
	}
}

func TestMotionGate_EmptyFrame(t *testing.T) {
	g := NewMotionGate(1.0, 0)
	defer g.Close()

	if ok, _ := g.Allow(nil); ok {
		t.Error("nil frame should not pass")
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if ok, _ := g.Allow(&empty); ok {
		t.Error("empty frame should not pass")
	}
}

func TestMotionGate_Close_Multiple(t *testing.T) {
	g := NewMotionGate(1.0, 0)

	// Close multiple times should not panic
	g.Close()
	g.Close()
}

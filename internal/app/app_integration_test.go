package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/formcheck/internal/capture"
	"github.com/ayusman/formcheck/internal/detector"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/pose"
	"github.com/ayusman/formcheck/internal/speech"
)

func TestApp_FrameLoop_CountsSquat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	det := detector.NewMockDetector()
	det.Queue(pose.StandingLandmarks(), pose.SquatBottomLandmarks(), pose.StandingLandmarks())

	voice := speech.NewMockSynthesizer()
	app := New(Config{
		Camera:        camera,
		Detector:      det,
		Voice:         voice,
		Tones:         speech.NewMockTonePlayer(),
		Exercise:      exercise.Squat,
		VoiceEnabled:  true,
		Preview:       true,
		FrameInterval: 5 * time.Millisecond,
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for app.Snapshot().Update.Reps.Count < 1 || app.LatestFrame() == nil {
		if time.Now().After(deadline) {
			app.Stop()
			t.Fatalf("timed out: reps = %d", app.Snapshot().Update.Reps.Count)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if jpeg := app.LatestFrame(); !bytes.HasPrefix(jpeg, []byte{0xff, 0xd8}) {
		t.Error("preview should be a JPEG")
	}
	if det.LastTimestamp() < 0 {
		t.Errorf("timestamps should be relative to the session start, got %d", det.LastTimestamp())
	}

	if err := app.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if camera.IsOpen() {
		t.Error("camera should be closed after Stop()")
	}
	if !det.Closed() {
		t.Error("detector should be closed after Stop()")
	}
	if app.LatestFrame() != nil {
		t.Error("preview should be cleared after Stop()")
	}

	spoken := len(voice.Spoken())
	calls := det.Calls()
	time.Sleep(30 * time.Millisecond)
	if det.Calls() != calls {
		t.Error("detector called after Stop()")
	}
	if len(voice.Spoken()) != spoken {
		t.Error("speech after Stop()")
	}
	if got := app.Snapshot().Update.Reps.Count; got != 1 {
		t.Errorf("reps = %d, want 1", got)
	}
}

func TestApp_FrameLoop_CameraNotReady(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	camera := capture.NewMockCamera(nil, false)
	det := detector.NewMockDetector()
	app := New(Config{
		Camera:        camera,
		Detector:      det,
		FrameInterval: 5 * time.Millisecond,
	})

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := app.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if camera.Reads() == 0 {
		t.Error("camera should have been polled")
	}
	if det.Calls() != 0 {
		t.Errorf("detector called %d times without frames", det.Calls())
	}
}

func TestApp_FrameLoop_CameraFailure(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	camera.SetOpenError(capture.ErrCameraNotOpen)
	det := detector.NewMockDetector()

	app := New(Config{Camera: camera, Detector: det})
	if err := app.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail when the camera cannot open")
	}
	if app.Running() {
		t.Error("app should not run after a failed start")
	}
	if !det.Closed() {
		t.Error("detector should be released when the camera fails")
	}
}

func TestApp_FrameLoop_MotionGate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	det := detector.NewMockDetector()
	det.SetLandmarks(pose.StandingLandmarks())

	app := New(Config{
		Camera:        camera,
		Detector:      det,
		Motion:        capture.NewMotionGate(1.0, 0),
		Exercise:      exercise.Squat,
		FrameInterval: 5 * time.Millisecond,
	})
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := app.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// the same black frame over and over only needs one detection
	if got := det.Calls(); got != 1 {
		t.Errorf("detector calls = %d, want 1", got)
	}
	if app.Snapshot().Update.FormScore == nil {
		t.Error("the first frame should still be evaluated")
	}
}

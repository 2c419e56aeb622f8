package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurSize is the Gaussian kernel that hides sensor noise.
	blurSize = 21
	// pixelDelta is the grey-level change that counts a pixel as moved.
	pixelDelta = 25
)

// MotionGate decides which frames are worth running pose detection on. A
// frame passes when it differs from the last frame that passed by more
// than a percentage of pixels, or when too many frames in a row were held
// back. The second rule keeps static holds such as planks evaluated.
type MotionGate struct {
	threshold float64
	maxSkip   int

	mu      sync.Mutex
	ref     gocv.Mat
	hasRef  bool
	skipped int
}

// NewMotionGate creates a gate. threshold is the percentage of changed
// pixels; maxSkip is the longest run of held frames (0 means no limit).
func NewMotionGate(threshold float64, maxSkip int) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		maxSkip:   maxSkip,
		ref:       gocv.NewMat(),
	}
}

// Allow reports whether frame should be processed, along with the changed
// pixel percentage against the reference frame. The first frame always
// passes.
func (g *MotionGate) Allow(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurSize, Y: blurSize}, 0, 0, gocv.BorderDefault)

	if !g.hasRef || blurred.Rows() != g.ref.Rows() || blurred.Cols() != g.ref.Cols() {
		g.pass(blurred)
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.ref, &diff)

	moved := gocv.NewMat()
	defer moved.Close()
	gocv.Threshold(diff, &moved, pixelDelta, 255, gocv.ThresholdBinary)

	change := float64(gocv.CountNonZero(moved)) / float64(moved.Rows()*moved.Cols()) * 100

	if change > g.threshold || (g.maxSkip > 0 && g.skipped >= g.maxSkip) {
		g.pass(blurred)
		return true, change
	}
	g.skipped++
	return false, change
}

func (g *MotionGate) pass(blurred gocv.Mat) {
	blurred.CopyTo(&g.ref)
	g.hasRef = true
	g.skipped = 0
}

// Reset forgets the reference frame so the next frame passes.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

// Close releases the reference frame. The gate stays usable.
func (g *MotionGate) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
	return nil
}

func (g *MotionGate) release() {
	if !g.ref.Empty() {
		g.ref.Close()
		g.ref = gocv.NewMat()
	}
	g.hasRef = false
	g.skipped = 0
}

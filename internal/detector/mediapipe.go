package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/formcheck/internal/pose"
)

const scriptName = "pose_service.py"

// MediaPipeDetector runs the MediaPipe pose landmarker in a Python
// subprocess. Frames go out on stdin as
//
//	[8-byte timestamp ms][4-byte length][JPEG]
//
// (both big-endian) and each frame is answered with one JSON line.
type MediaPipeDetector struct {
	config  Config
	script  string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	mu      sync.Mutex
	started bool
}

// NewMediaPipeDetector locates the service script. The subprocess is not
// launched until Start.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findPoseScript()
	} else if _, err := os.Stat(script); err != nil {
		script = ""
	}
	if script == "" {
		return nil, ErrScriptNotFound
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
	}, nil
}

// Start launches the Python service. Calling Start on a running detector is
// a no-op.
func (d *MediaPipeDetector) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	python := d.config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	d.cmd = exec.Command(python, d.script,
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinDetectionConf, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)

	// The service prints one ready line once the model is loaded.
	var ready struct {
		Ready bool   `json:"ready"`
		Error string `json:"error"`
	}
	line, err := d.stdout.ReadBytes('\n')
	if err == nil {
		err = json.Unmarshal(line, &ready)
	}
	if err == nil && !ready.Ready {
		err = fmt.Errorf("model failed to load: %s", ready.Error)
	}
	if err != nil {
		d.stdin.Close()
		_ = d.cmd.Wait()
		d.cmd, d.stdin, d.stdout = nil, nil, nil
		return fmt.Errorf("pose service: %w", err)
	}

	d.started = true
	log.WithField("script", d.script).Info("pose service started")
	return nil
}

// Detect encodes frame as JPEG and asks the service for landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat, timestampMs int64) (pose.Landmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, ErrNotStarted
	}
	if err := writeRequest(d.stdin, timestampMs, buf.GetBytes()); err != nil {
		return nil, err
	}
	return readResponse(d.stdout)
}

// Close stops the Python service.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}
	err := d.cmd.Wait()

	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func writeRequest(w io.Writer, timestampMs int64, jpeg []byte) error {
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[:8], uint64(timestampMs))
	binary.BigEndian.PutUint32(header[8:], uint32(len(jpeg)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(jpeg); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// jsonResponse is the JSON structure from the Python service.
type jsonResponse struct {
	Poses []jsonPose `json:"poses"`
	Error string     `json:"error,omitempty"`
}

type jsonPose struct {
	Landmarks []pose.Landmark `json:"landmarks"`
}

func readResponse(r *bufio.Reader) (pose.Landmarks, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("pose service: %s", resp.Error)
	}
	if len(resp.Poses) == 0 || len(resp.Poses[0].Landmarks) == 0 {
		return nil, nil
	}
	return pose.Landmarks(resp.Poses[0].Landmarks), nil
}

func findPoseScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", scriptName),
		filepath.Join("..", "scripts", scriptName),
		filepath.Join(execDir, "scripts", scriptName),
		filepath.Join(os.Getenv("HOME"), ".formcheck", "scripts", scriptName),
	}
	return firstExisting(candidates)
}

// findVenvPython looks for a virtualenv interpreter next to the project or
// the binary.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".formcheck/venv/bin/python"),
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

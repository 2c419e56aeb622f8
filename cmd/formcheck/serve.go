package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/capture"
	"github.com/ayusman/formcheck/internal/detector"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/metrics"
	"github.com/ayusman/formcheck/internal/server"
	"github.com/ayusman/formcheck/internal/speech"
	"github.com/ayusman/formcheck/internal/store"
	"github.com/ayusman/formcheck/internal/tray"
)

var serveTray bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coach and its web dashboard",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveTray, "tray", false, "show a system tray menu")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager("formcheck", "coach", reg)

	coach := app.New(coachConfig(st, m))
	defer func() {
		if err := coach.Close(); err != nil {
			log.WithError(err).Warn("errors while closing the coach")
		}
	}()

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		log.WithField("dir", webDir).Info("serving static files")
	}
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Coach:     coach,
		Metrics:   m,
		Gatherer:  reg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !serveTray {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		stop()
	}()
	runTray(ctx, stop, coach)
	stop()
	return <-errCh
}

// coachConfig builds the coach from the config file, with the choices the
// user made in the dashboard taking precedence.
func coachConfig(st *store.Store, m *metrics.Manager) app.Config {
	settings := st.Settings()
	persona := speech.LookupPersona(settings.GetOr(store.SettingPersona, cfg.Voice.Persona))

	c := app.Config{
		Voice:          speech.NewCommandSynthesizer(cfg.Voice.Command, persona),
		Tones:          speech.NewCommandTonePlayer(cfg.Voice.ToneCommand),
		Goals:          st.Goals(),
		Recorder:       st.Sessions(),
		Metrics:        m,
		Exercise:       exercise.Parse(settings.GetOr(store.SettingExercise, cfg.Exercise)),
		Persona:        persona,
		VoiceEnabled:   settings.Bool(store.SettingVoiceEnabled, cfg.Voice.Enabled),
		SoundEnabled:   settings.Bool(store.SettingSoundEnabled, cfg.Voice.Sounds),
		Preview:        cfg.Camera.Preview,
		SpeechCooldown: cfg.Voice.Cooldown,
	}
	if cfg.Camera.FPS > 0 {
		c.FrameInterval = time.Second / time.Duration(cfg.Camera.FPS)
	}

	det, err := detector.NewMediaPipeDetector(detector.Config{
		Script:           cfg.Detector.Script,
		Python:           cfg.Detector.Python,
		MinDetectionConf: cfg.Detector.MinDetectionConfidence,
		MinTrackingConf:  cfg.Detector.MinTrackingConfidence,
	})
	if err != nil {
		log.WithError(err).Warn("pose service unavailable, expecting landmarks from the browser")
		return c
	}
	c.Detector = det
	c.Camera = capture.NewCamera(capture.Options{
		Device: cfg.Camera.Device,
		FPS:    cfg.Camera.FPS,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	})
	if cfg.Camera.MotionThreshold > 0 {
		// re-check still poses once a second
		c.Motion = capture.NewMotionGate(cfg.Camera.MotionThreshold, c.Camera.FPS())
	}
	return c
}

// runTray blocks until the tray is quit or ctx ends.
func runTray(ctx context.Context, quit context.CancelFunc, coach *app.App) {
	t := tray.New(coach.Running())

	t.OnToggle(func(enabled bool) {
		if !enabled {
			if err := coach.Stop(); err != nil {
				log.WithError(err).Warn("errors while stopping the coach")
			}
			return
		}
		if err := coach.Start(ctx); err != nil {
			log.WithError(err).Error("failed to start the coach")
			t.SetEnabled(false)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(dashboardURL(cfg.Server.Addr)); err != nil {
			log.WithError(err).Warn("failed to open the dashboard")
		}
	})
	t.OnQuit(quit)

	unsubscribe := coach.Subscribe(func(u app.Update) {
		t.Show(u, coach.Snapshot().LastCue)
	})
	defer unsubscribe()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir returns configured when set, otherwise the first existing
// "web" directory near the working directory or in the data directory.
func findWebDir(configured string) string {
	if configured != "" {
		if info, err := os.Stat(configured); err == nil && info.IsDir() {
			return configured
		}
		log.WithField("dir", configured).Warn("static directory not found")
		return ""
	}

	candidates := []string{"web", "../web", "../../web", filepath.Join(cfg.DataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

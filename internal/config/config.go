// Package config loads formcheck settings from a TOML file, an optional
// .env file and FORMCHECK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvAddr     = "FORMCHECK_ADDR"
	EnvDataDir  = "FORMCHECK_DATA_DIR"
	EnvLogLevel = "FORMCHECK_LOG_LEVEL"
	EnvCamera   = "FORMCHECK_CAMERA"
	EnvVoice    = "FORMCHECK_VOICE"
)

type Config struct {
	DataDir  string `toml:"data_dir"`
	Exercise string `toml:"exercise"`

	Server   ServerConfig   `toml:"server"`
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Voice    VoiceConfig    `toml:"voice"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

type CameraConfig struct {
	Device int `toml:"device"`
	FPS    int `toml:"fps"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Preview renders annotated frames for /api/stream.
	Preview bool `toml:"preview"`
	// MotionThreshold is the percentage of changed pixels below which a
	// frame skips pose detection. 0 disables the check.
	MotionThreshold float64 `toml:"motion_threshold"`
}

type DetectorConfig struct {
	Script                 string  `toml:"script"`
	Python                 string  `toml:"python"`
	MinDetectionConfidence float64 `toml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `toml:"min_tracking_confidence"`
}

type VoiceConfig struct {
	Enabled     bool          `toml:"enabled"`
	Sounds      bool          `toml:"sounds"`
	Persona     string        `toml:"persona"`
	Command     string        `toml:"command"`
	ToneCommand string        `toml:"tone_command"`
	Cooldown    time.Duration `toml:"cooldown"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Stdout bool   `toml:"stdout"`
	JSON   bool   `toml:"json"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Exercise: "squat",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Camera: CameraConfig{
			FPS:     15,
			Width:   640,
			Height:  480,
			Preview: true,
		},
		Detector: DetectorConfig{
			MinDetectionConfidence: 0.5,
			MinTrackingConfidence:  0.5,
		},
		Voice: VoiceConfig{
			Enabled:     true,
			Sounds:      true,
			Persona:     "coach",
			Command:     "espeak-ng",
			ToneCommand: "play",
			Cooldown:    3 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Stdout: true,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".formcheck"
	}
	return filepath.Join(home, ".formcheck")
}

// Load reads path over the defaults. A missing file is not an error. A .env
// file in the working directory is loaded next and FORMCHECK_* variables
// are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvCamera); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCamera, err)
		}
		c.Camera.Device = n
	}
	if v := os.Getenv(EnvVoice); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVoice, err)
		}
		c.Voice.Enabled = b
	}
	return nil
}

// DBPath is the SQLite database inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "formcheck.db")
}

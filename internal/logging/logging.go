// Package logging configures the global logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	Level      string
	File       string
	ToStdout   bool
	FormatJSON bool
}

// Setup applies params to the standard logger. It returns a closer for the
// log file, which is a no-op when logging only to stdout.
func Setup(params Params) io.Closer {
	return setup(log.StandardLogger(), params, os.Stdout)
}

func setup(logger *log.Logger, params Params, stdout io.Writer) io.Closer {
	if params.FormatJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(Level(params.Level))

	if params.File == "" {
		logger.SetOutput(stdout)
		return nopCloser{}
	}

	if filepath.Ext(params.File) != ".log" {
		params.File += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename:   params.File,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}

	if params.ToStdout {
		logger.SetOutput(&combinedWriter{writers: []io.Writer{stdout, rotating}})
	} else {
		logger.SetOutput(rotating)
	}
	return rotating
}

// Level parses a level name. Unknown names fall back to info.
func Level(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// combinedWriter writes to every writer and keeps going past failures.
type combinedWriter struct {
	writers []io.Writer
}

func (cw *combinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	return len(p), err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

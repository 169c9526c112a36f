// Package telemetry provides the structured logger shared across the
// harness, consolidating the two overlapping logger styles the original
// codebase carried into one logrus-based logger with optional rotating
// file output.
package telemetry

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how verbosely the logger writes. An empty
// File means stderr only, matching the default CLI behavior: log output
// must never interleave with the stdout report grammar.
type Config struct {
	Level string
	File  string
}

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Init applies cfg to the package-level logger. Called once at startup
// from cmd/, before any shard or harness code logs.
func Init(cfg Config) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = parsed
	}
	base.SetLevel(level)

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    64, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	base.SetOutput(out)
	return nil
}

// Logger returns the package-level structured logger.
func Logger() *logrus.Logger {
	return base
}

// WithFields is a convenience wrapper matching the boot-sequence chaining
// style (`log.GetLogger().WithField(...).WithField(...)`).
func WithFields(fields logrus.Fields) *logrus.Entry {
	return base.WithFields(fields)
}

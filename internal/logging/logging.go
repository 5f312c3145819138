// Package logging builds the logrus logger shared by gradewatch components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options select level, format and destination.
type Options struct {
	Level  string
	Format string // "text" or "json"
	File   string // empty writes to Stderr
	Stderr io.Writer
}

// New returns a configured logger and a cleanup func that closes the log
// file, if one was opened.
func New(opts Options) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if raw := strings.TrimSpace(opts.Level); raw != "" {
		parsed, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch opts.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: opts.File != ""})
	}

	cleanup := func() {}
	switch {
	case strings.TrimSpace(opts.File) != "":
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, nil, err
		}
		l.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	case opts.Stderr != nil:
		l.SetOutput(opts.Stderr)
	default:
		l.SetOutput(os.Stderr)
	}
	return l, cleanup, nil
}

// Component returns an entry tagged with the component name.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

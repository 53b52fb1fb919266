// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger used by the CLI.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/msuchane/near-facsimile/pkg/types"
)

const (
	logFileMaxSizeMB  = 1
	logFileMaxBackups = 2
)

// Level maps the number of --verbose flags to a log level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// New returns a logger that writes human-readable lines to w at the level
// selected by verbosity. Colour is enabled only when w is a terminal.
func New(w io.Writer, verbosity int) zerolog.Logger {
	return zerolog.New(consoleWriter(w)).
		Level(Level(verbosity)).
		With().Timestamp().Logger()
}

// Setup returns the CLI logger: console output on stderr and, when
// cfg.File is set, a rotated log file. The returned closer releases the
// log file.
func Setup(cfg types.LogConfig) (zerolog.Logger, io.Closer) {
	writers := []io.Writer{consoleWriter(os.Stderr)}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
		}
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(Level(cfg.Verbosity)).
		With().Timestamp().Logger()
	return logger, closer
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isTerminal(w),
		TimeFormat: time.TimeOnly,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

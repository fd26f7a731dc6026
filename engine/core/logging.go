package core

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// ElapsedTimeFormat renders the time since the logger was created, not the wall clock.
const ElapsedTimeFormat = "15:04:05.0000"

// Logger is the process logger. It is created once in main and handed to every
// component that needs to report progress, so there is no package-level state.
type Logger struct {
	l     *log.Logger
	start time.Time
}

// NewLogger builds a logger writing to w at the given level ("debug", "info",
// "warn", "error"). Timestamps are relative to the moment of construction.
func NewLogger(w io.Writer, level string) (*Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	start := time.Now()
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    lvl == log.DebugLevel,
		CallerOffset:    1,
		ReportTimestamp: true,
		TimeFormat:      ElapsedTimeFormat,
		TimeFunction:    elapsedSince(start),
		Prefix:          "vkcore 🌋",
		Level:           lvl,
	})
	return &Logger{l: l, start: start}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{l: log.New(io.Discard), start: time.Now()}
}

func elapsedSince(start time.Time) log.TimeFunction {
	return func(t time.Time) time.Time {
		return time.Time{}.Add(t.Sub(start))
	}
}

// Elapsed reports the time since the logger was created.
func (lg *Logger) Elapsed() time.Duration {
	return time.Since(lg.start)
}

// With returns a child logger carrying the given key/value pairs on every line.
func (lg *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{l: lg.l.With(keyvals...), start: lg.start}
}

func (lg *Logger) Debugf(msg string, args ...interface{}) {
	lg.l.Debugf(msg, args...)
}

func (lg *Logger) Infof(msg string, args ...interface{}) {
	lg.l.Infof(msg, args...)
}

func (lg *Logger) Warnf(msg string, args ...interface{}) {
	lg.l.Warnf(msg, args...)
}

func (lg *Logger) Errorf(msg string, args ...interface{}) {
	lg.l.Errorf(msg, args...)
}

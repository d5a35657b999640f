package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	entry *logrus.Logger
}

// NewLogger creates a Logger at info level writing to stdout.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info", os.Stdout)
}

// NewLoggerWithLevel creates a Logger with the given level name ("debug",
// "info", "warn", "error"). Unknown levels fall back to info.
func NewLoggerWithLevel(level string, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{entry: l}
}

// Discard returns a Logger that drops everything. Used in tests.
func Discard() *Logger {
	return NewLoggerWithLevel("error", io.Discard)
}

// Level reports the active level name.
func (l *Logger) Level() string {
	return l.entry.GetLevel().String()
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// Package logger builds the logrus loggers used by the server and tools.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the given level. An empty or
// unknown level falls back to info; a nil out writes to stderr.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05 MST 2006/01/02",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Package logger provides a centralized, leveled logging facility.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("starting server")
//	logger.Debugf("spot=%f vol=%f", spot, vol)
//
// Messages are emitted through a shared logrus logger writing to stderr, so
// logs stay separate from normal program output.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup
// (e.g. after parsing CLI flags). Out of range values are clamped.
func SetVerbosity(v int) {
	switch Level(v) {
	case Error:
		log.SetLevel(logrus.ErrorLevel)
	case Info:
		log.SetLevel(logrus.InfoLevel)
	case Debug:
		log.SetLevel(logrus.DebugLevel)
	default:
		if v < int(Error) {
			log.SetLevel(logrus.ErrorLevel)
			return
		}
		log.SetLevel(logrus.TraceLevel)
	}
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	switch log.GetLevel() {
	case logrus.TraceLevel:
		return Trace
	case logrus.DebugLevel:
		return Debug
	case logrus.InfoLevel, logrus.WarnLevel:
		return Info
	}
	return Error
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// WithField returns an entry carrying a structured key/value pair.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	log.Errorf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	log.Infof(format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	log.Tracef(format, args...)
}

// Package log implements structured logging on top of logrus.
package log

import "sync"

// Logger is the uniform logging interface (used by the call registry). It
// is satisfied by logrusAdapter; tests may substitute their own
// implementation via SetLogger.
type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	once   sync.Once
	logger Logger = newDiscardLogger()
)

// GetLogger returns the process-wide logger. Safe to call before Init; it
// discards output until Init is called.
func GetLogger() Logger {
	return logger
}

// Init configures the process-wide logger from cfg. Only the first call
// takes effect; subsequent calls are no-ops.
func Init(cfg *LoggerConfig) {
	once.Do(func() {
		logger = newLogrusLogger(cfg)
	})
}

// SetLogger overrides the process-wide logger directly, bypassing Init's
// once-guard. Intended for tests that want to capture output.
func SetLogger(l Logger) {
	logger = l
}

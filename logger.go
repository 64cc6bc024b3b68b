package frontend

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerPtr stores the package logger. Accessed atomically so SetLogger can
// race with logging from any goroutine.
var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	loggerPtr.Store(&l)
}

// SetLogger configures the logger used by Contexts created afterwards.
// By default nothing is logged. Pass nil to restore silence.
//
// Levels used:
//   - debug: per-frame phase timings and lookup misses (debug mode only)
//   - info: context lifecycle
//   - warn: dropped work, e.g. events for handlers removed mid-frame
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *zerolog.Logger {
	return loggerPtr.Load()
}

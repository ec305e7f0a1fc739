// Package log provides the single structured logger every cadmium package
// reaches for instead of the standard library's log package or bare
// fmt.Printf debugging.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.Mutex
	current *zap.SugaredLogger
)

// init installs a sane development-mode default so a package that logs
// before main() calls SetDevelopment/SetProduction still gets somewhere
// useful instead of panicking on a nil logger.
func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}

	current = l.Sugar()
}

// SetProduction swaps in a JSON, production-tuned logger (info level,
// sampled at high volume), for cmd/cadmium to call
// once at startup when not running under a debugger.
func SetProduction() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}

	mu.Lock()
	current = l.Sugar()
	mu.Unlock()

	return nil
}

// L returns the current process-wide logger.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	return current
}

func Debugf(format string, args ...interface{}) { L().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { L().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { L().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { L().Errorf(format, args...) }

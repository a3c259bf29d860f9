//go:build !noassert

package assert

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
)

var (
	disabled atomic.Bool
	fatal    atomic.Bool
	logger   atomic.Pointer[slog.Logger]
)

// Disable will disable assertion reporting globally.
// Conditions are still evaluated and returned.
func Disable() {
	disabled.Store(true)
}

// Enable can be used to re-enable assertion reporting if Disable was called previously.
// Note that this is a global setting, and calling Disable or Enable can have unintended side effects in other goroutines that use assertions.
func Enable() {
	disabled.Store(false)
}

// Fatal controls whether a failed assertion panics instead of being logged.
func Fatal(panics bool) {
	fatal.Store(panics)
}

// SetLogger sets the logger used to report failed assertions.
// Passing nil restores the use of [slog.Default].
func SetLogger(log *slog.Logger) {
	logger.Store(log)
}

func currentLogger() *slog.Logger {
	if log := logger.Load(); log != nil {
		return log
	}
	return slog.Default()
}

func getCallerDetails(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s#%d", file, line)
}

func failed(label string) {
	if disabled.Load() {
		return
	}
	caller := getCallerDetails(2)
	if fatal.Load() {
		panic(fmt.Sprintf("assertion '%s' failed at '%s'", label, caller))
	}
	currentLogger().Error("Assertion failed", "assertion", label, "caller", caller)
}

// True reports a failed assertion if result is not true, and returns result.
func True(label string, result bool) bool {
	if !result {
		failed(label)
	}
	return result
}

// TrueFunc reports a failed assertion if assertion returns false, and returns the result.
func TrueFunc(label string, assertion func() bool) bool {
	result := assertion()
	if !result {
		failed(label)
	}
	return result
}

// Never marks code that should be unreachable.
// It always panics, even if assertions have been disabled.
func Never(value any) {
	msg := fmt.Sprintf("unreachable code reached (value=%v)", value)
	currentLogger().Error(msg, "caller", getCallerDetails(1))
	panic(msg)
}

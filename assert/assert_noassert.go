//go:build noassert

package assert

import (
	"fmt"
	"log/slog"
)

func Disable() {
	// No op
}

func Enable() {
	// No op
}

func Fatal(bool) {
	// No op
}

func SetLogger(*slog.Logger) {
	// No op
}

func True(label string, result bool) bool {
	return result
}

func TrueFunc(label string, assertion func() bool) bool {
	return assertion()
}

func Never(value any) {
	panic(fmt.Sprintf("unreachable code reached (value=%v)", value))
}

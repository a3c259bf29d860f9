package eventhost

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"log/slog"
	"strings"
)

var (
	ErrInvalidConfig = errors.New("invalid host configuration")
)

type hostConf struct {
	name         string
	logger       *slog.Logger
	errorHandler func(error)
}

func newHostConf(configFuncs ...ConfigFunc) hostConf {
	conf := hostConf{
		name: uuid.NewString(),
	}
	for _, fn := range configFuncs {
		if fn == nil {
			continue
		}
		if err := fn(&conf); err != nil {
			panic(err)
		}
	}
	if conf.logger == nil {
		conf.logger = slog.Default()
	}
	conf.logger = conf.logger.With("host", conf.name)
	return conf
}

// ConfigFunc is used to configure a host at construction time.
// Hosts are constructed once and kept for the life of the application, so an invalid configuration panics.
type ConfigFunc func(conf *hostConf) error

// WithName sets the name used to identify the host in log output.
// A random UUID is used by default.
func WithName(name string) ConfigFunc {
	return func(conf *hostConf) error {
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			return fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
		}
		conf.name = name
		return nil
	}
}

// WithLogger sets the logger a host uses. [slog.Default] is used otherwise.
func WithLogger(logger *slog.Logger) ConfigFunc {
	return func(conf *hostConf) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidConfig)
		}
		conf.logger = logger
		return nil
	}
}

// WithErrorHandler registers a function that is called for each async handler failure.
// This can be useful for consolidating error reporting, since failures are never returned to the dispatcher.
// The function may be called from multiple goroutines at once.
// A panic in the function is recovered and logged.
//
// Synchronous hosts don't use the error handler, since a failing synchronous handler panics through [EventHost.Dispatch].
func WithErrorHandler(handler func(error)) ConfigFunc {
	return func(conf *hostConf) error {
		if handler == nil {
			return fmt.Errorf("%w: nil error handler", ErrInvalidConfig)
		}
		conf.errorHandler = handler
		return nil
	}
}

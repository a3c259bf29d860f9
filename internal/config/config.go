package config

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventhost/assert"
	flag "github.com/spf13/pflag"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const (
	ScenarioSync     = "sync"
	ScenarioAsync    = "async"
	ScenarioUnbind   = "unbind"
	ScenarioObserver = "observer"
	ScenarioAll      = "all"

	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

var (
	ErrInvalid = errors.New("invalid configuration")

	Scenarios  = []string{ScenarioSync, ScenarioAsync, ScenarioUnbind, ScenarioObserver, ScenarioAll}
	LogFormats = []string{FormatAuto, FormatText, FormatJSON}
)

// Config holds the settings for the demo command.
type Config struct {
	Scenario  string
	Handlers  int
	Delay     time.Duration
	FailEvery int
	Timeout   time.Duration
	LogLevel  slog.Level
	LogFormat string
}

// Default returns the configuration used when neither flags nor environment variables are set.
func Default() *Config {
	return &Config{
		Scenario:  ScenarioAll,
		Handlers:  4,
		Delay:     25 * time.Millisecond,
		FailEvery: 3,
		Timeout:   5 * time.Second,
		LogLevel:  slog.LevelInfo,
		LogFormat: FormatAuto,
	}
}

// Load parses args into a [Config].
// Each flag's default is taken from its environment variable (see [EnvPrefix]) before falling back to [Default].
// Usage information is written to usage, and [flag.ErrHelp] is returned if it was requested.
func Load(name string, args []string, usage io.Writer) (*Config, error) {
	var (
		def      = Default()
		conf     = new(Config)
		logLevel string
		fs       = flag.NewFlagSet(name, flag.ContinueOnError)
	)
	fs.SetOutput(usage)
	fs.SetInterspersed(false)
	fs.StringVarP(&conf.Scenario, "scenario", "s", envVal("scenario", def.Scenario), "Scenario to run: "+strings.Join(Scenarios, ", "))
	fs.IntVarP(&conf.Handlers, "handlers", "n", envInt("handlers", def.Handlers), "Number of handlers bound per host")
	fs.DurationVar(&conf.Delay, "delay", envDuration("delay", def.Delay), "How long each async handler works before settling")
	fs.IntVar(&conf.FailEvery, "fail-every", envInt("fail-every", def.FailEvery), "Every Nth async handler fails, 0 disables failures")
	fs.DurationVar(&conf.Timeout, "timeout", envDuration("timeout", def.Timeout), "Maximum wait for async handlers, 0 waits forever")
	fs.StringVar(&logLevel, "log-level", envVal("log-level", def.LogLevel.String()), "Log level: debug, info, warn, error")
	fs.StringVar(&conf.LogFormat, "log-format", envVal("log-format", def.LogFormat), "Log format: "+strings.Join(LogFormats, ", "))
	fs.Usage = func() {
		_, _ = fmt.Fprintf(usage, "Runs scripted scenarios against event hosts and reports what the handlers observed.\n\nUSAGE:\n%s [FLAGS]\n\nFLAGS\n%s", name, fs.FlagUsages())
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %s", ErrInvalid, strings.Join(fs.Args(), " "))
	}

	errs := assert.CollectErrors("; ")
	if err := conf.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		errs.AddString("%w: log level '%s' is not recognized", ErrInvalid, logLevel)
	}
	errs.Add(conf.Validate())
	if err := errs.Result(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks that every setting is within its allowed range.
func (c *Config) Validate() error {
	errs := assert.CollectErrors("; ")
	c.Scenario = strings.ToLower(strings.TrimSpace(c.Scenario))
	if !slices.Contains(Scenarios, c.Scenario) {
		errs.AddString("%w: unknown scenario '%s'", ErrInvalid, c.Scenario)
	}
	if c.Handlers < 1 {
		errs.AddString("%w: handlers must be >= 1", ErrInvalid)
	}
	if c.Delay < 0 {
		errs.AddString("%w: delay must not be negative", ErrInvalid)
	}
	if c.FailEvery < 0 {
		errs.AddString("%w: fail-every must not be negative", ErrInvalid)
	}
	if c.Timeout < 0 {
		errs.AddString("%w: timeout must not be negative", ErrInvalid)
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if !slices.Contains(LogFormats, c.LogFormat) {
		errs.AddString("%w: unknown log format '%s'", ErrInvalid, c.LogFormat)
	}
	return errs.Result()
}

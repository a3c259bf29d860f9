package demo

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventhost/assert"
	"github.com/saylorsolutions/eventhost/internal/config"
	"io"
	"log/slog"
)

var (
	ErrUnexpected = errors.New("unexpected scenario result")
)

// component stands in for a UI component that binds handlers under its own identity.
type component struct {
	name  string
	calls int
}

func newComponents(n int) []*component {
	comps := make([]*component, n)
	for i := range comps {
		comps[i] = &component{name: fmt.Sprintf("component-%d", i+1)}
	}
	return comps
}

type printer struct {
	out io.Writer
}

func (p *printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Runner runs demo scenarios, writing a report of what handlers observed to its output.
type Runner struct {
	conf *config.Config
	log  *slog.Logger
	p    *printer
}

func NewRunner(conf *config.Config, log *slog.Logger, out io.Writer) *Runner {
	if conf == nil {
		conf = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		conf: conf,
		log:  log,
		p:    &printer{out: out},
	}
}

// Run executes the configured scenario, or every scenario for [config.ScenarioAll].
// An error wrapping [ErrUnexpected] is returned if handlers didn't observe what the event hosts promise.
func (r *Runner) Run(ctx context.Context) error {
	if r.conf.Scenario != config.ScenarioAll {
		return r.runScenario(ctx, r.conf.Scenario)
	}
	for _, scenario := range config.Scenarios {
		if scenario == config.ScenarioAll {
			continue
		}
		if err := r.runScenario(ctx, scenario); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, scenario string) error {
	log := r.log.With("scenario", scenario)
	log.Info("Running scenario")
	r.p.Printf("== %s\n", scenario)
	var err error
	switch scenario {
	case config.ScenarioSync:
		err = r.runSync(log)
	case config.ScenarioAsync:
		err = r.runAsync(ctx, log)
	case config.ScenarioUnbind:
		err = r.runUnbind(log)
	case config.ScenarioObserver:
		err = r.runObserver(log)
	default:
		assert.Never(scenario)
	}
	if err != nil {
		log.Error("Scenario failed", "error", err)
		return fmt.Errorf("scenario '%s': %w", scenario, err)
	}
	log.Info("Scenario complete")
	return nil
}

func expect(what string, want, got int) error {
	if want != got {
		return fmt.Errorf("%w: expected %d %s, got %d", ErrUnexpected, want, what, got)
	}
	return nil
}

package demo

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventhost"
	"github.com/saylorsolutions/eventhost/assert"
	"github.com/saylorsolutions/eventhost/observer"
	"github.com/saylorsolutions/eventhost/syncx"
	"log/slog"
	"sync/atomic"
	"time"
)

type tick struct {
	N int
}

// runSync binds a handler per component, with every other one bound once, and dispatches twice.
func (r *Runner) runSync(log *slog.Logger) error {
	var (
		host  = eventhost.New[tick](eventhost.WithName("sync"), eventhost.WithLogger(log))
		comps = newComponents(r.conf.Handlers)
	)
	for i, comp := range comps {
		comp := comp
		host.Bind(comp, func(tick) {
			comp.calls++
		}, eventhost.HandlerOptions{Once: i%2 == 1})
	}
	host.Dispatch(tick{N: 1})
	host.Dispatch(tick{N: 2})

	errs := assert.CollectErrors()
	for i, comp := range comps {
		kind, want := "persistent", 2
		if i%2 == 1 {
			kind, want = "once", 1
		}
		r.p.Printf("%-14s %-10s calls=%d\n", comp.name, kind, comp.calls)
		errs.Add(expect(comp.name+" calls", want, comp.calls))
	}
	errs.Add(expect("remaining handlers", (len(comps)+1)/2, host.Len()))
	return errs.Result()
}

// runAsync binds async handlers that work in the background, some of which fail, and waits for all of them to settle.
func (r *Runner) runAsync(ctx context.Context, log *slog.Logger) error {
	var (
		settled  atomic.Int32
		failures atomic.Int32
		host     = eventhost.NewAsync[tick](
			eventhost.WithName("async"),
			eventhost.WithLogger(log),
			eventhost.WithErrorHandler(func(err error) {
				failures.Add(1)
			}),
		)
		comps        = newComponents(r.conf.Handlers)
		wantFailures int
	)
	for i, comp := range comps {
		fails := r.conf.FailEvery > 0 && (i+1)%r.conf.FailEvery == 0
		if fails {
			wantFailures++
		}
		host.BindOnce(comp, func(t tick) syncx.Future[error] {
			return syncx.Go(func() error {
				defer settled.Add(1)
				comp.calls++
				time.Sleep(r.conf.Delay)
				if fails {
					return fmt.Errorf("%s gave up on tick %d", comp.name, t.N)
				}
				return nil
			})
		})
	}

	if r.conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.conf.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := host.DispatchAndAwaitAllContext(ctx, tick{N: 1}); err != nil {
		return fmt.Errorf("waiting for async handlers: %w", err)
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	errs := assert.CollectErrors()
	for i, comp := range comps {
		outcome := "settled"
		if r.conf.FailEvery > 0 && (i+1)%r.conf.FailEvery == 0 {
			outcome = "failed"
		}
		r.p.Printf("%-14s %-10s calls=%d\n", comp.name, outcome, comp.calls)
		errs.Add(expect(comp.name+" calls", 1, comp.calls))
	}
	r.p.Printf("settled=%d failures=%d elapsed=%s\n", settled.Load(), failures.Load(), elapsed)

	return errors.Join(
		errs.Result(),
		expect("settled handlers", len(comps), int(settled.Load())),
		expect("failures", wantFailures, int(failures.Load())),
		expect("remaining handlers", 0, host.Len()),
	)
}

// runUnbind binds every component to two hosts, then tears the first component down.
func (r *Runner) runUnbind(log *slog.Logger) error {
	var (
		hostX = eventhost.New[tick](eventhost.WithName("unbind-x"), eventhost.WithLogger(log))
		hostY = eventhost.New[tick](eventhost.WithName("unbind-y"), eventhost.WithLogger(log))
		comps = newComponents(r.conf.Handlers)
	)
	for _, comp := range comps {
		comp := comp
		handler := func(tick) {
			comp.calls++
		}
		hostX.Bind(comp, handler)
		hostY.Bind(comp, handler)
	}
	torndown := comps[0]
	eventhost.Unbind(torndown)
	hostX.Dispatch(tick{N: 1})
	hostY.Dispatch(tick{N: 1})

	errs := assert.CollectErrors()
	for i, comp := range comps {
		want := 2
		if i == 0 {
			want = 0
		}
		r.p.Printf("%-14s calls=%d\n", comp.name, comp.calls)
		errs.Add(expect(comp.name+" calls", want, comp.calls))
	}
	return errs.Result()
}

// runObserver has every component observe a subject, and tears half of them down between updates.
func (r *Runner) runObserver(log *slog.Logger) error {
	var (
		subject = observer.NewSubject(0, eventhost.WithName("observer"), eventhost.WithLogger(log))
		comps   = newComponents(r.conf.Handlers)
	)
	for _, comp := range comps {
		comp := comp
		subject.Observe(comp, func(int) {
			comp.calls++
		})
	}
	subject.Set(1)
	for i, comp := range comps {
		if i%2 == 0 {
			eventhost.Unbind(comp)
		}
	}
	subject.Set(2)

	errs := assert.CollectErrors()
	for i, comp := range comps {
		want := 2
		if i%2 == 0 {
			want = 1
		}
		r.p.Printf("%-14s updates=%d\n", comp.name, comp.calls)
		errs.Add(expect(comp.name+" updates", want, comp.calls))
	}
	errs.Add(expect("final value", 2, subject.Get()))
	return errs.Result()
}

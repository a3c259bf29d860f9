package eventhost

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventhost/assert"
	"github.com/saylorsolutions/eventhost/syncx"
	"golang.org/x/sync/errgroup"
	"log/slog"
)

var (
	ErrHandlerPanic = errors.New("handler panicked")
)

// AsyncHandler receives the arguments of a dispatched event, and may return a pending result.
// A nil [syncx.Future] means the handler has already finished.
// Otherwise, the future is resolved with nil on success, or with the error that caused the handler to fail.
//
// [syncx.Go] is a convenient way to run the handler's work in the background.
type AsyncHandler[T any] func(args T) syncx.Future[error]

// AsyncEventHost dispatches events to every bound [AsyncHandler], and can wait for all of them to finish.
type AsyncEventHost[T any] struct {
	name      string
	log       *slog.Logger
	onError   func(error)
	listeners registry[AsyncHandler[T]]
}

// NewAsync creates an [AsyncEventHost] and registers it so [UnbindAsync] can reach it.
func NewAsync[T any](configFuncs ...ConfigFunc) *AsyncEventHost[T] {
	conf := newHostConf(configFuncs...)
	host := &AsyncEventHost[T]{
		name:    conf.name,
		log:     conf.logger,
		onError: conf.errorHandler,
	}
	asyncHosts.register(host)
	return host
}

// Name returns the name of the host, as set by [WithName].
func (h *AsyncEventHost[T]) Name() string {
	return h.name
}

// Bind registers handler under owner.
// Binding more handlers under the same owner adds to the ones already bound.
func (h *AsyncEventHost[T]) Bind(owner Owner, handler AsyncHandler[T], options ...HandlerOptions) {
	if !validOwner(owner) || !assert.True("handler must not be nil", handler != nil) {
		return
	}
	var opts HandlerOptions
	if len(options) > 0 {
		opts = options[0]
	}
	h.listeners.add(owner, handler, opts.Once)
	h.log.Debug("Bound async handler", "owner", owner, "once", opts.Once)
}

// BindOnce registers a handler under owner that is removed after it's invoked.
func (h *AsyncEventHost[T]) BindOnce(owner Owner, handler AsyncHandler[T]) {
	h.Bind(owner, handler, HandlerOptions{Once: true})
}

// DispatchAndAwaitAll calls every handler bound when the dispatch starts, and blocks until every pending result has settled.
// A failing handler doesn't stop the others from being called or awaited, and failures are not returned.
//
// There is no timeout. A handler that never resolves its future will block this call forever.
// Use [AsyncEventHost.DispatchAndAwaitAllContext] to limit the wait.
func (h *AsyncEventHost[T]) DispatchAndAwaitAll(args T) {
	_ = h.DispatchAndAwaitAllContext(context.Background(), args)
}

// DispatchAndAwaitAllContext is the same as [AsyncEventHost.DispatchAndAwaitAll], but stops waiting when ctx is done.
// The context error is returned in that case, and handlers that are still running are left to finish on their own.
// Once handlers are removed either way.
func (h *AsyncEventHost[T]) DispatchAndAwaitAllContext(ctx context.Context, args T) error {
	batches := h.listeners.snapshot()
	defer func() {
		var removed int
		for _, b := range batches {
			removed += h.listeners.prune(b)
		}
		if removed > 0 {
			h.log.Debug("Removed once handlers", "removed", removed)
		}
	}()

	var (
		group   errgroup.Group
		pending int
		errs    = assert.CollectErrors()
	)
	for _, b := range batches {
		for _, sub := range b.subs {
			if !sub.claim() {
				continue
			}
			future, err := invokeAsync(sub.handler, args)
			if err != nil {
				h.handlerFailed(errs, b.owner, err)
				continue
			}
			if future == nil {
				continue
			}
			pending++
			owner := b.owner
			group.Go(func() error {
				if err := awaitFuture(future); err != nil {
					h.handlerFailed(errs, owner, err)
					return err
				}
				return nil
			})
		}
	}
	h.log.Debug("Dispatched async event", "owners", len(batches), "pending", pending)

	settled := make(chan struct{})
	go func() {
		defer close(settled)
		// Failures have already been reported individually.
		_ = group.Wait()
	}()
	select {
	case <-settled:
		if err := errs.Result(); err != nil {
			h.log.Debug("Async dispatch settled with failures", "failures", errs.Len(), "error", err)
		}
		return nil
	case <-ctx.Done():
		h.log.Warn("Stopped waiting for async handlers", "error", ctx.Err())
		return ctx.Err()
	}
}

func invokeAsync[T any](handler AsyncHandler[T], args T) (future syncx.Future[error], err error) {
	defer func() {
		if r := recover(); r != nil {
			future = nil
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(args), nil
}

// awaitFuture waits for future to settle.
// Futures may be implemented by callers, so a panic while awaiting is reported as a failure.
func awaitFuture(future syncx.Future[error]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return future.Await()
}

func (h *AsyncEventHost[T]) handlerFailed(errs *assert.Collector, owner Owner, err error) {
	err = fmt.Errorf("handler for owner %v failed: %w", owner, err)
	errs.Add(err)
	h.log.Warn("Async handler failed", "error", err)
	if h.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Error handler panicked", "error", err, "panic", r)
		}
	}()
	h.onError(err)
}

// Len returns the number of handlers currently bound.
func (h *AsyncEventHost[T]) Len() int {
	return h.listeners.len()
}

// Owners returns the number of owners currently known to the host, including owners whose handlers have all been removed.
func (h *AsyncEventHost[T]) Owners() int {
	return h.listeners.owners()
}

func (h *AsyncEventHost[T]) unbind(owner Owner) bool {
	if !h.listeners.remove(owner) {
		return false
	}
	h.log.Debug("Unbound owner", "owner", owner)
	return true
}

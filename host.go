package eventhost

import (
	"github.com/saylorsolutions/eventhost/assert"
	"log/slog"
)

// Handler receives the arguments of a dispatched event.
type Handler[T any] func(args T)

// EventHost dispatches events synchronously to every bound [Handler].
type EventHost[T any] struct {
	name      string
	log       *slog.Logger
	listeners registry[Handler[T]]
}

// New creates an [EventHost] and registers it so [Unbind] can reach it.
func New[T any](configFuncs ...ConfigFunc) *EventHost[T] {
	conf := newHostConf(configFuncs...)
	host := &EventHost[T]{
		name: conf.name,
		log:  conf.logger,
	}
	syncHosts.register(host)
	return host
}

// Name returns the name of the host, as set by [WithName].
func (h *EventHost[T]) Name() string {
	return h.name
}

// Bind registers handler under owner.
// Binding more handlers under the same owner adds to the ones already bound.
func (h *EventHost[T]) Bind(owner Owner, handler Handler[T], options ...HandlerOptions) {
	if !validOwner(owner) || !assert.True("handler must not be nil", handler != nil) {
		return
	}
	var opts HandlerOptions
	if len(options) > 0 {
		opts = options[0]
	}
	h.listeners.add(owner, handler, opts.Once)
	h.log.Debug("Bound handler", "owner", owner, "once", opts.Once)
}

// BindOnce registers a handler under owner that is removed after it's invoked.
func (h *EventHost[T]) BindOnce(owner Owner, handler Handler[T]) {
	h.Bind(owner, handler, HandlerOptions{Once: true})
}

// Dispatch calls every handler bound when the dispatch starts, grouped by owner.
//
// If a handler panics, then the remaining handlers are skipped and the panic propagates to the caller.
// The once handlers of the owner that was being dispatched are still removed.
func (h *EventHost[T]) Dispatch(args T) {
	batches := h.listeners.snapshot()
	h.log.Debug("Dispatching event", "owners", len(batches))
	for _, b := range batches {
		h.dispatchBatch(b, args)
	}
}

func (h *EventHost[T]) dispatchBatch(b batch[Handler[T]], args T) {
	defer func() {
		if removed := h.listeners.prune(b); removed > 0 {
			h.log.Debug("Removed once handlers", "owner", b.owner, "removed", removed)
		}
	}()
	for _, sub := range b.subs {
		if !sub.claim() {
			continue
		}
		sub.handler(args)
	}
}

// Len returns the number of handlers currently bound.
func (h *EventHost[T]) Len() int {
	return h.listeners.len()
}

// Owners returns the number of owners currently known to the host, including owners whose handlers have all been removed.
func (h *EventHost[T]) Owners() int {
	return h.listeners.owners()
}

func (h *EventHost[T]) unbind(owner Owner) bool {
	if !h.listeners.remove(owner) {
		return false
	}
	h.log.Debug("Unbound owner", "owner", owner)
	return true
}

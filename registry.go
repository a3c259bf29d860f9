package eventhost

import (
	"github.com/saylorsolutions/eventhost/assert"
	"github.com/saylorsolutions/eventhost/syncx"
	"reflect"
	"sync"
	"sync/atomic"
)

// Owner identifies the component that bound a handler.
// Any comparable value may be used, but a pointer to the binding component is the most common choice.
type Owner = any

// HandlerOptions controls how a bound handler is treated.
type HandlerOptions struct {
	Once bool // Once removes the handler after the first dispatch cycle it's invoked in.
}

type subscription[H any] struct {
	handler H
	once    bool
	spent   atomic.Bool
}

// claim reports whether the subscription may be invoked.
// A once subscription may only be claimed a single time.
func (s *subscription[H]) claim() bool {
	if !s.once {
		return true
	}
	return s.spent.CompareAndSwap(false, true)
}

type entry[H any] struct {
	owner Owner
	subs  []*subscription[H]
}

// batch is an owner's subscriptions as they were at the start of a dispatch cycle.
type batch[H any] struct {
	owner Owner
	subs  []*subscription[H]
}

// registry keeps subscriptions grouped by owner, and owners in the order they were first bound.
type registry[H any] struct {
	mux     sync.Mutex
	order   []*entry[H]
	entries map[Owner]*entry[H]
}

func validOwner(owner Owner) bool {
	if !assert.True("owner must not be nil", owner != nil) {
		return false
	}
	return assert.True("owner must be comparable", reflect.ValueOf(owner).Comparable())
}

func (r *registry[H]) add(owner Owner, handler H, once bool) {
	sub := &subscription[H]{handler: handler, once: once}
	syncx.LockFunc(&r.mux, func() {
		if r.entries == nil {
			r.entries = map[Owner]*entry[H]{}
		}
		e, ok := r.entries[owner]
		if !ok {
			e = &entry[H]{owner: owner}
			r.entries[owner] = e
			r.order = append(r.order, e)
		}
		e.subs = append(e.subs, sub)
	})
}

func (r *registry[H]) remove(owner Owner) bool {
	return syncx.LockFuncT(&r.mux, func() bool {
		e, ok := r.entries[owner]
		if !ok {
			return false
		}
		delete(r.entries, owner)
		for i, candidate := range r.order {
			if candidate == e {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		return true
	})
}

func (r *registry[H]) snapshot() []batch[H] {
	return syncx.LockFuncT(&r.mux, func() []batch[H] {
		batches := make([]batch[H], len(r.order))
		for i, e := range r.order {
			subs := make([]*subscription[H], len(e.subs))
			copy(subs, e.subs)
			batches[i] = batch[H]{owner: e.owner, subs: subs}
		}
		return batches
	})
}

// prune removes the once subscriptions in b from the owner's live subscriptions.
// Subscriptions bound after the snapshot are left alone, and an owner that was unbound in the meantime is not restored.
func (r *registry[H]) prune(b batch[H]) int {
	spent := map[*subscription[H]]struct{}{}
	for _, sub := range b.subs {
		if sub.once {
			spent[sub] = struct{}{}
		}
	}
	if len(spent) == 0 {
		return 0
	}
	return syncx.LockFuncT(&r.mux, func() int {
		e, ok := r.entries[b.owner]
		if !ok {
			return 0
		}
		kept := make([]*subscription[H], 0, len(e.subs))
		for _, sub := range e.subs {
			if _, ok := spent[sub]; ok {
				continue
			}
			kept = append(kept, sub)
		}
		removed := len(e.subs) - len(kept)
		e.subs = kept
		return removed
	})
}

func (r *registry[H]) len() int {
	return syncx.LockFuncT(&r.mux, func() int {
		var n int
		for _, e := range r.order {
			n += len(e.subs)
		}
		return n
	})
}

func (r *registry[H]) owners() int {
	return syncx.LockFuncT(&r.mux, func() int {
		return len(r.order)
	})
}

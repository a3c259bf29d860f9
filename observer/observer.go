package observer

import (
	"github.com/saylorsolutions/eventhost"
	"sync"
)

// Observer receives a new value from a [Subject] when it changes.
type Observer[T any] func(newVal T)

// Subject is a value that may be observed for changes.
//
// Observers are bound under an owner, so a component that goes away can stop observing every [Subject] at once with [eventhost.Unbind].
type Subject[T any] interface {
	Get() T
	Set(newVal T)
	Observe(owner eventhost.Owner, obs Observer[T])
	ObserveOnce(owner eventhost.Owner, obs Observer[T])
}

// NewSubject creates a [Subject] holding val.
// The configFuncs are passed to the [eventhost.EventHost] that notifies observers.
func NewSubject[T any](val T, configFuncs ...eventhost.ConfigFunc) Subject[T] {
	return &subject[T]{
		value:   val,
		changes: eventhost.New[T](configFuncs...),
	}
}

type subject[T any] struct {
	mux     sync.RWMutex
	value   T
	changes *eventhost.EventHost[T]
}

func (s *subject[T]) Get() T {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.value
}

// Set stores newVal and notifies observers before returning.
// Observers may call Get, which will return newVal unless another Set happened in the meantime.
func (s *subject[T]) Set(newVal T) {
	s.mux.Lock()
	s.value = newVal
	s.mux.Unlock()
	s.changes.Dispatch(newVal)
}

func (s *subject[T]) Observe(owner eventhost.Owner, obs Observer[T]) {
	s.changes.Bind(owner, eventhost.Handler[T](obs))
}

func (s *subject[T]) ObserveOnce(owner eventhost.Owner, obs Observer[T]) {
	s.changes.BindOnce(owner, eventhost.Handler[T](obs))
}

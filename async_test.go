package eventhost

import (
	"context"
	"errors"
	"github.com/saylorsolutions/eventhost/syncx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const (
	testAwaitTimeout = time.Second
)

func TestAsyncEventHost_DispatchAndAwaitAll(t *testing.T) {
	var (
		finished atomic.Int32
		host     = NewAsync[time.Duration]()
	)
	for i := 0; i < 3; i++ {
		host.Bind(&testOwner{}, func(delay time.Duration) syncx.Future[error] {
			return syncx.Go(func() error {
				time.Sleep(delay)
				finished.Add(1)
				return nil
			})
		})
	}
	host.DispatchAndAwaitAll(30 * time.Millisecond)
	assert.Equal(t, int32(3), finished.Load(), "Every pending result should have settled")
}

func TestAsyncEventHost_DispatchAndAwaitAll_Order(t *testing.T) {
	var (
		calls  []string
		host   = NewAsync[struct{}]()
		ownerA = &testOwner{"a"}
		ownerB = &testOwner{"b"}
		record = func(label string) AsyncHandler[struct{}] {
			return func(struct{}) syncx.Future[error] {
				calls = append(calls, label)
				return nil
			}
		}
	)
	host.Bind(ownerA, record("a1"))
	host.Bind(ownerB, record("b1"))
	host.Bind(ownerA, record("a2"))
	host.DispatchAndAwaitAll(struct{}{})
	assert.Equal(t, []string{"a1", "a2", "b1"}, calls)
}

func TestAsyncEventHost_DispatchAndAwaitAll_NoPending(t *testing.T) {
	var (
		called bool
		host   = NewAsync[int]()
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		host.DispatchAndAwaitAll(1)
		host.Bind(&testOwner{}, func(int) syncx.Future[error] {
			called = true
			return nil
		})
		host.DispatchAndAwaitAll(2)
	}()
	select {
	case <-done:
	case <-time.After(testAwaitTimeout):
		t.Fatal("Dispatch without pending results should return immediately")
	}
	assert.True(t, called)
}

func TestAsyncEventHost_SettleAll(t *testing.T) {
	var (
		errTest  = errors.New("test failure")
		mux      sync.Mutex
		reported []error
		slowDone atomic.Bool
		host     = NewAsync[int](WithErrorHandler(func(err error) {
			mux.Lock()
			defer mux.Unlock()
			reported = append(reported, err)
		}))
	)
	host.Bind(&testOwner{"fails"}, func(int) syncx.Future[error] {
		return syncx.StaticFuture(errTest)
	})
	host.Bind(&testOwner{"panics"}, func(int) syncx.Future[error] {
		panic("boom")
	})
	host.Bind(&testOwner{"panics later"}, func(int) syncx.Future[error] {
		return syncx.Go(func() error {
			panic("later")
		})
	})
	host.Bind(&testOwner{"slow"}, func(int) syncx.Future[error] {
		return syncx.Go(func() error {
			time.Sleep(50 * time.Millisecond)
			slowDone.Store(true)
			return nil
		})
	})

	require.NotPanics(t, func() {
		host.DispatchAndAwaitAll(1)
	})
	assert.True(t, slowDone.Load(), "A failure must not short-circuit the other handlers")
	mux.Lock()
	defer mux.Unlock()
	require.Len(t, reported, 3)
	var (
		sawTest, sawPanic, sawLater bool
	)
	for _, err := range reported {
		switch {
		case errors.Is(err, errTest):
			sawTest = true
		case errors.Is(err, ErrHandlerPanic):
			sawPanic = true
		case errors.Is(err, syncx.ErrPanic):
			sawLater = true
		}
	}
	assert.True(t, sawTest, "Failed futures should be reported")
	assert.True(t, sawPanic, "Panics while invoking a handler should be reported")
	assert.True(t, sawLater, "Panics in background work should be reported")
}

func TestAsyncEventHost_BindOnce(t *testing.T) {
	var (
		aCalls, bCalls atomic.Int32
		host           = NewAsync[struct{}]()
	)
	host.Bind(&testOwner{"a"}, func(struct{}) syncx.Future[error] {
		aCalls.Add(1)
		return nil
	})
	host.BindOnce(&testOwner{"b"}, func(struct{}) syncx.Future[error] {
		return syncx.Go(func() error {
			bCalls.Add(1)
			return errors.New("once handlers are removed even if they fail")
		})
	})
	host.DispatchAndAwaitAll(struct{}{})
	host.DispatchAndAwaitAll(struct{}{})
	assert.Equal(t, int32(2), aCalls.Load())
	assert.Equal(t, int32(1), bCalls.Load())
	assert.Equal(t, 1, host.Len())
}

func TestAsyncEventHost_Bind_DuringDispatch(t *testing.T) {
	var (
		late atomic.Int32
		host = NewAsync[int]()
	)
	host.BindOnce(&testOwner{}, func(int) syncx.Future[error] {
		host.Bind(&testOwner{"late"}, func(int) syncx.Future[error] {
			late.Add(1)
			return nil
		}, HandlerOptions{Once: true})
		return nil
	})
	host.DispatchAndAwaitAll(1)
	assert.Equal(t, int32(0), late.Load(), "Handlers bound during a dispatch wait for the next one")
	assert.Equal(t, 1, host.Len(), "Once handlers bound during a dispatch must not be pruned early")

	host.DispatchAndAwaitAll(2)
	assert.Equal(t, int32(1), late.Load())
	assert.Equal(t, 0, host.Len())
}

func TestAsyncEventHost_DispatchAndAwaitAllContext(t *testing.T) {
	var (
		host    = NewAsync[int]()
		never   = syncx.NewFuture[error]()
		onceRan atomic.Int32
	)
	t.Cleanup(func() {
		never.Resolve(nil)
	})
	host.BindOnce(&testOwner{}, func(int) syncx.Future[error] {
		onceRan.Add(1)
		return never
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := host.DispatchAndAwaitAllContext(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, host.Len(), "Once handlers are removed even if the wait is abandoned")

	assert.NoError(t, host.DispatchAndAwaitAllContext(context.Background(), 2))
	assert.Equal(t, int32(1), onceRan.Load())
}

func TestUnbindAsync_AllHosts(t *testing.T) {
	var (
		calls atomic.Int32
		hostX = NewAsync[int]()
		hostY = NewAsync[int]()
		k1    = &testOwner{"k1"}
		count = func(int) syncx.Future[error] {
			calls.Add(1)
			return nil
		}
	)
	hostX.Bind(k1, count)
	hostY.Bind(k1, count)
	UnbindAsync(k1)
	hostX.DispatchAndAwaitAll(1)
	hostY.DispatchAndAwaitAll(1)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, hostX.Owners())
}

func TestNewAsync_Registered(t *testing.T) {
	before := asyncHosts.len()
	NewAsync[int]()
	assert.Equal(t, before+1, asyncHosts.len())
}

var _ syncx.Future[error] = (*explodingFuture)(nil)

// explodingFuture is a caller-supplied future that panics instead of settling.
type explodingFuture struct{}

func (f *explodingFuture) Resolve(error) {}

func (f *explodingFuture) Await(...time.Duration) error {
	panic("await blew up")
}

func (f *explodingFuture) Done() <-chan struct{} {
	return nil
}

func TestAsyncEventHost_FuturePanics(t *testing.T) {
	var (
		reported atomic.Pointer[error]
		ran      atomic.Bool
		host     = NewAsync[int](WithErrorHandler(func(err error) {
			reported.Store(&err)
		}))
	)
	host.Bind(&testOwner{"exploding"}, func(int) syncx.Future[error] {
		return new(explodingFuture)
	})
	host.Bind(&testOwner{"fine"}, func(int) syncx.Future[error] {
		return syncx.Go(func() error {
			ran.Store(true)
			return nil
		})
	})

	require.NotPanics(t, func() {
		host.DispatchAndAwaitAll(1)
	})
	assert.True(t, ran.Load(), "Other handlers should still settle")
	err := reported.Load()
	require.NotNil(t, err, "A panic while awaiting should be reported as a failure")
	assert.ErrorIs(t, *err, ErrHandlerPanic)
	assert.Contains(t, (*err).Error(), "await blew up")
}

func TestAsyncEventHost_ErrorHandlerPanics(t *testing.T) {
	var (
		calls atomic.Int32
		host  = NewAsync[int](WithErrorHandler(func(err error) {
			calls.Add(1)
			panic("error handler blew up")
		}))
	)
	host.Bind(&testOwner{"fails now"}, func(int) syncx.Future[error] {
		panic("boom")
	})
	host.Bind(&testOwner{"fails later"}, func(int) syncx.Future[error] {
		return syncx.StaticFuture(errors.New("test failure"))
	})

	require.NotPanics(t, func() {
		host.DispatchAndAwaitAll(1)
	})
	assert.Equal(t, int32(2), calls.Load(), "Every failure should still reach the error handler")
}

func TestAsyncEventHost_UnbindAsync_DuringDispatch(t *testing.T) {
	var (
		mux    sync.Mutex
		calls  []string
		host   = NewAsync[int]()
		first  = &testOwner{"first"}
		second = &testOwner{"second"}
		record = func(label string) {
			mux.Lock()
			defer mux.Unlock()
			calls = append(calls, label)
		}
	)
	host.Bind(first, func(int) syncx.Future[error] {
		record("first")
		UnbindAsync(second)
		return nil
	})
	host.Bind(second, func(int) syncx.Future[error] {
		return syncx.Go(func() error {
			record("second")
			return nil
		})
	}, HandlerOptions{Once: true})

	host.DispatchAndAwaitAll(1)
	assert.Equal(t, []string{"first", "second"}, calls, "The current cycle already took its snapshot")
	assert.Equal(t, 1, host.Owners(), "Pruning must not restore an unbound owner")

	calls = nil
	host.DispatchAndAwaitAll(2)
	assert.Equal(t, []string{"first"}, calls)
	assert.Equal(t, 1, host.Len())
}

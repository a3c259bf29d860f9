package eventhost

import (
	"github.com/saylorsolutions/eventhost/syncx"
	"sync"
)

type unbinder interface {
	unbind(owner Owner) bool
}

// flavor tracks every host of one kind so handlers can be unbound from all of them at once.
// Hosts are never removed.
type flavor struct {
	mux   sync.Mutex
	hosts []unbinder
}

func (f *flavor) register(host unbinder) {
	syncx.LockFunc(&f.mux, func() {
		f.hosts = append(f.hosts, host)
	})
}

func (f *flavor) unbind(owner Owner) int {
	if !validOwner(owner) {
		return 0
	}
	hosts := syncx.LockFuncT(&f.mux, func() []unbinder {
		hosts := make([]unbinder, len(f.hosts))
		copy(hosts, f.hosts)
		return hosts
	})
	var n int
	for _, host := range hosts {
		if host.unbind(owner) {
			n++
		}
	}
	return n
}

func (f *flavor) len() int {
	return syncx.LockFuncT(&f.mux, func() int {
		return len(f.hosts)
	})
}

var (
	syncHosts  flavor
	asyncHosts flavor
)

// Unbind removes every handler bound under owner from every [EventHost].
// Dispatch cycles that are already running are not affected.
// This is a no-op if owner has no handlers bound.
func Unbind(owner Owner) {
	syncHosts.unbind(owner)
}

// UnbindAsync removes every handler bound under owner from every [AsyncEventHost].
// Dispatch cycles that are already running are not affected.
// This is a no-op if owner has no handlers bound.
func UnbindAsync(owner Owner) {
	asyncHosts.unbind(owner)
}

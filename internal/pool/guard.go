package pool

// reentryGuard rejects nested entry into the pool's mutating operations.
// The untrusted token collaborator can call back into the pool before the
// outer operation returns; the guard turns that into an immediate error for
// the nested call while the outer call completes normally.
//
// It is a plain flag, not a mutex: a same-goroutine re-entrant call must be
// rejected, not deadlocked. Callers serialize operations; the pool is not
// safe for concurrent use.
type reentryGuard struct {
	entered bool
}

func (g *reentryGuard) enter() error {
	if g.entered {
		return ErrReentrantCall
	}
	g.entered = true
	return nil
}

func (g *reentryGuard) exit() {
	g.entered = false
}

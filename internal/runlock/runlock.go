// Package runlock serializes matching runs. Only one run may read pending
// records and commit outcomes at a time, across every server instance when a
// Redis lock is configured, or within the process otherwise.
//
// Acquisition never waits: a caller that finds the lock held gets ErrLocked
// and should report the conflict instead of queueing.
package runlock

import (
	"context"
	"errors"
)

// ErrLocked is returned when another run holds the lock.
var ErrLocked = errors.New("another matching run is in progress")

// ErrLeaseLost is the cancellation cause once a held lease can no longer be
// trusted, for example after the Redis key expired.
var ErrLeaseLost = errors.New("run lock lost")

// Locker hands out the run lock.
type Locker interface {
	Acquire(ctx context.Context) (Lease, error)
}

// Lease is a held lock. Release is safe to call more than once.
//
// Lost returns a channel closed when the lease stops guarding the run. Work
// done after that point must not be committed. A nil channel means the
// lease cannot be lost.
type Lease interface {
	Release(ctx context.Context) error
	Lost() <-chan struct{}
}

// WithLease returns a copy of ctx that is cancelled with ErrLeaseLost when
// lease is lost. The returned cancel func must be called to free resources.
func WithLease(ctx context.Context, lease Lease) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	lost := lease.Lost()
	if lost == nil {
		return ctx, func() { cancel(context.Canceled) }
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-lost:
			cancel(ErrLeaseLost)
		case <-stop:
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		close(stop)
		cancel(context.Canceled)
	}
}

// Held reports whether lease still guards the run.
func Held(lease Lease) bool {
	select {
	case <-lease.Lost():
		return false
	default:
		return true
	}
}

// Local is an in-process Locker.
type Local struct {
	sem chan struct{}
}

// NewLocal creates an unlocked in-process lock.
func NewLocal() *Local {
	return &Local{sem: make(chan struct{}, 1)}
}

// Acquire takes the lock or returns ErrLocked immediately.
func (l *Local) Acquire(ctx context.Context) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case l.sem <- struct{}{}:
		return &localLease{sem: l.sem}, nil
	default:
		return nil, ErrLocked
	}
}

type localLease struct {
	sem      chan struct{}
	released bool
}

// Lost is nil: an in-process lock is held until released.
func (l *localLease) Lost() <-chan struct{} { return nil }

func (l *localLease) Release(context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	<-l.sem
	return nil
}

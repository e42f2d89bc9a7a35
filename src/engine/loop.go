// Package engine runs the synchronization core on a single event loop and
// exposes read accessors to the outer surfaces.
package engine

import (
	"context"
	"errors"
	"runtime/debug"

	"market-monitor/src/logger"
)

// ErrLoopStopped is returned when work is posted after the loop has exited.
var ErrLoopStopped = errors.New("engine: event loop stopped")

// -----------------------------------------------------------------------------

// Loop executes posted functions one at a time in FIFO order on a single
// goroutine. A panicking task is logged and dropped.
type Loop struct {
	tasks   chan func()
	stopped chan struct{}
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewLoop(size int, log *logger.Logger) *Loop {
	if size <= 0 {
		size = 256
	}
	return &Loop{
		tasks:   make(chan func(), size),
		stopped: make(chan struct{}),
		logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Run processes tasks until ctx is cancelled. Tasks still queued at that
// point are discarded.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// -----------------------------------------------------------------------------

// Post enqueues fn, blocking while the queue is full. Returns false once the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// -----------------------------------------------------------------------------

// Dispatch is Post without the result, for use as a callback dispatcher.
func (l *Loop) Dispatch(fn func()) {
	if !l.Post(fn) {
		l.logger.Debug("Event loop stopped, dropping callback")
	}
}

// -----------------------------------------------------------------------------

// Call runs fn on the loop and waits for it to finish. Must not be called
// from a task running on the loop.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		// the task may have run just before the loop exited
		select {
		case <-done:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// -----------------------------------------------------------------------------

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

// -----------------------------------------------------------------------------

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Event handler panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

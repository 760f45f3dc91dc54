// Package runloop provides a single-threaded run-to-completion scheduler.
// Posted functions execute one at a time on the goroutine that calls
// RunUntilIdle; blocking fetches run on worker goroutines and post their
// completion back.
package runloop

import (
	"context"
	"sync"

	"github.com/rshade/scrollviz/internal/dataset"
)

// Loop is a FIFO of work executed serially by RunUntilIdle. Post and Schedule
// are safe to call from any goroutine.
type Loop struct {
	mu       sync.Mutex
	queue    []func()
	inflight int
	wake     chan struct{}
}

// New creates an empty Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn to run on the loop goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.notify()
}

// Schedule runs fetch on a worker goroutine and posts complete with its
// result. It satisfies loader.Scheduler.
func (l *Loop) Schedule(fetch func() (*dataset.Table, error), complete func(*dataset.Table, error)) {
	l.mu.Lock()
	l.inflight++
	l.mu.Unlock()

	go func() {
		table, err := fetch()

		// Enqueue and release the in-flight slot atomically so RunUntilIdle
		// never observes an empty queue with the completion still pending.
		l.mu.Lock()
		l.queue = append(l.queue, func() { complete(table, err) })
		l.inflight--
		l.mu.Unlock()
		l.notify()
	}()
}

// RunUntilIdle executes posted work until the queue is empty and no fetch is
// in flight, or until ctx is cancelled.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, idle := l.next()
		if fn != nil {
			fn()
			continue
		}
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, l.inflight == 0
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, false
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

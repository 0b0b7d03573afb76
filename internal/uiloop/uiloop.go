// Package uiloop provides the single serialized context in which overlay
// updates and session-state fixups run.
package uiloop

import (
	"context"
	"log"
	"sync"
)

// Loop runs posted functions one at a time, in post order, on its own goroutine.
// Post never blocks, so it is safe to call from the input event path.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	running bool
}

// New creates a loop. Call Run to start draining it.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It returns immediately.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is cancelled. Functions still queued at
// cancellation are run before Run returns.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			runSafely(fn)
		}
	}
}

func runSafely(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("UI loop: recovered panic: %v", err)
		}
	}()
	fn()
}

// Sync runs posted functions inline. Tests use it to make the async
// context deterministic.
type Sync struct{}

// Post runs fn immediately.
func (Sync) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

package rpc

import (
	"context"
	"sync"
)

// Dispatcher runs callbacks on behalf of the transport. Replies, inbound
// calls and the closed notification all go through it.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Immediate runs callbacks on the calling goroutine.
var Immediate Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Loop is a single-goroutine event loop. Each posted function runs to
// completion before the next one starts.
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewLoop creates a loop with room for buffer queued events
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Post queues fn. Events posted after Run has returned are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.events:
			fn()
		}
	}
}

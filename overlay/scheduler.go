package overlay

import (
	"sync"
	"time"
)

// Scheduler is the owner context of an Engine. Every engine method must be
// called from it, and the engine uses it to bring timer ticks and audio
// callbacks back onto it.
type Scheduler interface {
	// Post runs fn on the owner context. It may be called from any goroutine.
	Post(fn func())
	// Every runs fn on the owner context every interval until stop is called.
	Every(interval time.Duration, fn func()) (stop func())
}

// Loop is a Scheduler backed by a single goroutine that runs posted
// functions in order.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.queue:
			fn()
		case <-l.done:
			return
		}
	}
}

// Post queues fn. Functions posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop itself.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
	case <-l.done:
	}
}

func (l *Loop) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(fn)
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}

// Close stops the loop. Queued functions that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

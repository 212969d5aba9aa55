package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// postMsg carries a function posted from another goroutine.
type postMsg struct {
	fn func()
}

// timerMsg fires timer id. Ticks of stopped timers are dropped.
type timerMsg struct {
	id int
}

type timer struct {
	interval time.Duration
	fn       func()
}

// Post runs fn on the event loop. It is safe for concurrent use.
func (r *Reader) Post(fn func()) {
	if r.closed() {
		return
	}

	select {
	case r.posts <- fn:
	case <-r.done:
	default:
		// the queue is full, do not block the caller
		go func() {
			select {
			case r.posts <- fn:
			case <-r.done:
			}
		}()
	}
}

// Every runs fn on the event loop every interval. It must be called from
// the event loop.
func (r *Reader) Every(interval time.Duration, fn func()) func() {
	r.nextTimer++
	id := r.nextTimer
	r.timers[id] = timer{interval: interval, fn: fn}
	r.pending = append(r.pending, tick(id, interval))

	return func() { delete(r.timers, id) }
}

func tick(id int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	})
}

// fire runs timer id and schedules its next tick.
func (r *Reader) fire(id int) tea.Cmd {
	t, ok := r.timers[id]
	if !ok {
		return nil
	}

	t.fn()
	if _, ok := r.timers[id]; !ok {
		return nil
	}
	return tick(id, t.interval)
}

// waitForPost delivers the next posted function as a message.
func (r *Reader) waitForPost() tea.Cmd {
	return func() tea.Msg {
		if r.closed() {
			return nil
		}

		select {
		case fn := <-r.posts:
			return postMsg{fn: fn}
		case <-r.done:
			return nil
		}
	}
}

func (r *Reader) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

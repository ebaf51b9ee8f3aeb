package game

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// Scheduler invokes fn once per interval until cancelled.
// Calls to fn for one registration never overlap.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
}

// TimeScheduler drives callbacks from a time.Ticker on a dedicated goroutine.
type TimeScheduler struct{}

// Every starts a ticker goroutine that calls fn on each tick.
func (TimeScheduler) Every(interval time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// a tick may race with cancel; prefer done
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler fires callbacks only when Advance is called.
// It is intended for tests.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	tasks map[int]func()
}

// NewManualScheduler returns a scheduler with no registrations.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func())}
}

// Every registers fn. The interval is ignored; each Advance step is one interval.
func (m *ManualScheduler) Every(_ time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.tasks[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Advance fires every live registration steps times, in registration order.
// A registration cancelled during a step is not fired again.
func (m *ManualScheduler) Advance(steps int) {
	for range steps {
		m.mu.Lock()
		ids := lo.Keys(m.tasks)
		m.mu.Unlock()
		slices.Sort(ids)

		for _, id := range ids {
			m.mu.Lock()
			fn, ok := m.tasks[id]
			m.mu.Unlock()
			if ok {
				fn()
			}
		}
	}
}

// Active returns the number of live registrations.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	m := NewManualScheduler()
	var a, b int
	cancelA := m.Every(time.Second, func() { a++ })
	m.Every(time.Second, func() { b++ })

	m.Advance(3)
	if a != 3 || b != 3 {
		t.Errorf("after 3 steps a=%d b=%d, want 3 3", a, b)
	}

	cancelA()
	cancelA()
	m.Advance(2)
	if a != 3 || b != 5 {
		t.Errorf("after cancel a=%d b=%d, want 3 5", a, b)
	}
	if m.Active() != 1 {
		t.Errorf("Active = %d, want 1", m.Active())
	}
}

func TestManualScheduler_CancelDuringStep(t *testing.T) {
	m := NewManualScheduler()
	var cancel Cancel
	calls := 0
	cancel = m.Every(time.Second, func() {
		calls++
		cancel()
	})
	m.Advance(5)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTimeScheduler_StopsAfterCancel(t *testing.T) {
	var calls atomic.Int32
	cancel := TimeScheduler{}.Every(5*time.Millisecond, func() { calls.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 2 {
		t.Fatalf("scheduler fired %d times, want at least 2", calls.Load())
	}

	cancel()
	cancel()
	time.Sleep(20 * time.Millisecond)
	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("scheduler fired after cancel: %d -> %d", after, calls.Load())
	}
}

package game

import (
	"sync"
	"time"
)

const (
	// CountdownSeconds is the length of one game.
	CountdownSeconds = 60
	// TickInterval is the period between countdown ticks.
	TickInterval = time.Second
)

// Config configures a Session. Zero values select the defaults.
type Config struct {
	Vocabulary []string        // defaults to Vocabulary
	Scheduler  Scheduler       // defaults to TimeScheduler
	Seconds    int             // countdown length, defaults to CountdownSeconds
	Intn       func(n int) int // hint position source, defaults to math/rand/v2
}

// Snapshot is a point-in-time copy of a session's observable state.
type Snapshot struct {
	Phase            Phase
	Word             string
	Score            int
	RemainingSeconds int
	TimeDisplay      string
	Hint             Hint
	Finished         bool
	// Version increases by one with every state change.
	Version uint64
}

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

// Session owns the state of one game: word queue, score and countdown.
type Session struct {
	mu        sync.Mutex
	pubMu     sync.Mutex // held from snapshot to delivery so listeners see changes in order
	scheduler Scheduler
	seconds   int
	intn      func(n int) int
	queue     *WordQueue

	phase     Phase
	word      string
	hint      Hint
	score     int
	remaining int
	finished  bool
	closed    bool
	version   uint64
	done      chan struct{}

	cancel     Cancel
	generation int

	listeners    map[int]Listener
	nextListener int
}

// NewSession creates an idle session.
func NewSession(cfg Config) (*Session, error) {
	vocabulary := cfg.Vocabulary
	if vocabulary == nil {
		vocabulary = Vocabulary
	}
	queue, err := NewWordQueue(vocabulary)
	if err != nil {
		return nil, err
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = TimeScheduler{}
	}
	seconds := cfg.Seconds
	if seconds <= 0 {
		seconds = CountdownSeconds
	}
	return &Session{
		scheduler: scheduler,
		seconds:   seconds,
		intn:      cfg.Intn,
		queue:     queue,
		phase:     PhaseIdle,
		remaining: seconds,
		listeners: make(map[int]Listener),
		done:      make(chan struct{}),
	}, nil
}

// Start resets the score and timer, deals a fresh word and begins the countdown.
// A running session is restarted; a finished one must be acknowledged first.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.phase.CanTransitionTo(PhaseRunning) {
		s.mu.Unlock()
		return ErrNotAcknowledged
	}

	s.stopCountdown()
	s.queue.Reset()
	s.score = 0
	s.remaining = s.seconds
	s.finished = false
	s.phase = PhaseRunning
	s.nextWord()
	s.startCountdown()

	s.publishLocked()
	return nil
}

// Tick records the seconds left on the clock. Values above the current
// remaining time are ignored and negative values count as zero. Reaching zero
// finishes the game and stops the countdown. Ticks outside a running game are
// ignored.
func (s *Session) Tick(secondsRemaining int) {
	s.mu.Lock()
	s.tickLocked(s.generation, secondsRemaining)
}

// OnCorrect scores a point and moves to the next word.
func (s *Session) OnCorrect() error {
	return s.advance(1)
}

// OnSkip loses a point and moves to the next word.
func (s *Session) OnSkip() error {
	return s.advance(-1)
}

// AcknowledgeFinished clears the finished signal and returns the session to idle.
func (s *Session) AcknowledgeFinished() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase != PhaseFinished {
		s.mu.Unlock()
		return ErrNotFinished
	}
	s.finished = false
	s.phase = PhaseIdle

	s.publishLocked()
	return nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for change notifications until unsubscribe is called.
// Listeners run after the session lock is released, on the goroutine that
// caused the change, one change at a time and in the order the changes
// happened. A listener must not call back into the session.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close cancels the countdown and drops all listeners. Later triggers are
// ignored or fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopCountdown()
	s.listeners = make(map[int]Listener)
	close(s.done)
}

// Done returns a channel that is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) advance(delta int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase != PhaseRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.score += delta
	s.nextWord()

	s.publishLocked()
	return nil
}

// tickLocked is entered with s.mu held and releases it.
func (s *Session) tickLocked(generation, secondsRemaining int) {
	if s.closed || s.phase != PhaseRunning || generation != s.generation {
		s.mu.Unlock()
		return
	}
	secondsRemaining = max(secondsRemaining, 0)
	if secondsRemaining >= s.remaining && secondsRemaining != 0 {
		s.mu.Unlock()
		return
	}
	s.remaining = min(secondsRemaining, s.remaining)
	if s.remaining == 0 {
		s.finished = true
		s.phase = PhaseFinished
		s.stopCountdown()
	}

	s.publishLocked()
}

func (s *Session) nextWord() {
	s.word = s.queue.Next()
	s.hint = NewHint(s.word, s.intn)
}

func (s *Session) startCountdown() {
	s.generation++
	generation := s.generation
	elapsed := 0
	s.cancel = s.scheduler.Every(TickInterval, func() {
		elapsed++
		s.mu.Lock()
		s.tickLocked(generation, s.seconds-elapsed)
	})
}

func (s *Session) stopCountdown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:            s.phase,
		Word:             s.word,
		Score:            s.score,
		RemainingSeconds: s.remaining,
		TimeDisplay:      FormatElapsed(s.remaining),
		Hint:             s.hint,
		Finished:         s.finished,
		Version:          s.version,
	}
}

// publishLocked is entered with s.mu held and releases it. It bumps the
// version and delivers the new snapshot to the current listeners.
func (s *Session) publishLocked() {
	s.version++
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextListener; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

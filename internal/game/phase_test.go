package game

import "testing"

func TestPhaseCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseIdle, PhaseRunning, true},
		{PhaseIdle, PhaseFinished, false},
		{PhaseRunning, PhaseFinished, true},
		{PhaseRunning, PhaseRunning, true},
		{PhaseRunning, PhaseIdle, false},
		{PhaseFinished, PhaseIdle, true},
		{PhaseFinished, PhaseRunning, false},
		{Phase("bogus"), PhaseIdle, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

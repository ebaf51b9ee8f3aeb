// Package score builds the read-only view shown once a game has ended.
package score

import (
	"errors"
	"fmt"
)

// Kind names a view the factory can build.
type Kind string

// KindFinal is the final score view.
const KindFinal Kind = "final"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownView     = fmt.Errorf("%w: unknown view kind", ErrInvalidArgument)
)

// View exposes the score a game ended with.
type View struct {
	finalScore int
}

// Score returns the final score.
func (v *View) Score() int {
	return v.finalScore
}

// Factory produces views seeded with one final score.
type Factory struct {
	finalScore int
}

// NewFactory returns a factory for finalScore.
func NewFactory(finalScore int) *Factory {
	return &Factory{finalScore: finalScore}
}

// Create builds the view of the given kind.
func (f *Factory) Create(kind Kind) (*View, error) {
	if kind != KindFinal {
		return nil, fmt.Errorf("%w %q", ErrUnknownView, kind)
	}
	return &View{finalScore: f.finalScore}, nil
}

// ParseKind maps a query value to a Kind. Empty selects KindFinal.
func ParseKind(s string) Kind {
	if s == "" {
		return KindFinal
	}
	return Kind(s)
}

package game

import "errors"

// Session errors
var (
	ErrNotRunning      = errors.New("game is not running")
	ErrNotFinished     = errors.New("game has not finished")
	ErrNotAcknowledged = errors.New("finished game must be acknowledged before starting again")
	ErrEmptyVocabulary = errors.New("vocabulary cannot be empty")
	ErrClosed          = errors.New("session is closed")
)

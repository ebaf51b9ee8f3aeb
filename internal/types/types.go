package types

import "time"

// HintView is the JSON form of a word hint.
type HintView struct {
	Length   int    `json:"length"`
	Position int    `json:"position"`
	Letter   string `json:"letter"`
	Text     string `json:"text"`
}

// GameView is the JSON snapshot sent by the API and the websocket feed.
type GameView struct {
	Phase            string   `json:"phase"`
	Word             string   `json:"word"`
	Score            int      `json:"score"`
	RemainingSeconds int      `json:"remainingSeconds"`
	TimeDisplay      string   `json:"timeDisplay"`
	Hint             HintView `json:"hint"`
	Finished         bool     `json:"finished"`
	Version          uint64   `json:"version"`
}

// ScoreRecord is the persisted result of a finished game.
type ScoreRecord struct {
	SessionID  string    `json:"sessionId"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

// AcknowledgeResponse is returned when a finished game is acknowledged.
type AcknowledgeResponse struct {
	FinalScore int    `json:"finalScore"`
	ScoreURL   string `json:"scoreUrl"`
}

// ErrorResponse is the body of a rejected request or websocket action.
type ErrorResponse struct {
	Error string `json:"error"`
}

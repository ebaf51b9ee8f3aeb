package main

import (
	"time"

	"guesstheword/internal/game"
	"guesstheword/internal/types"
)

// newGameSession builds an idle game for sessionID and hooks up score recording.
func (app *App) newGameSession(sessionID string) (*game.Session, error) {
	g, err := game.NewSession(game.Config{
		Vocabulary: app.Vocabulary,
		Scheduler:  app.Scheduler,
	})
	if err != nil {
		return nil, err
	}
	g.Subscribe(func(snap game.Snapshot) {
		if snap.Phase == game.PhaseFinished {
			app.recordFinalScore(sessionID, snap.Score)
		}
	})
	return g, nil
}

// recordFinalScore keeps the score of a finished game in memory and on disk.
func (app *App) recordFinalScore(sessionID string, finalScore int) {
	record := types.ScoreRecord{
		SessionID:  sessionID,
		Score:      finalScore,
		FinishedAt: time.Now().UTC(),
	}
	app.SessionMutex.Lock()
	app.FinalScores[sessionID] = record
	app.SessionMutex.Unlock()
	logInfo("Game finished for session %s with score %d", sessionID, finalScore)

	if err := app.saveScoreRecord(record); err != nil {
		logWarn("Failed to persist score for session %s: %v", sessionID, err)
	}
}

// finalScore returns the last finished score for a session, from memory or disk.
func (app *App) finalScore(sessionID string) (types.ScoreRecord, bool) {
	app.SessionMutex.RLock()
	record, ok := app.FinalScores[sessionID]
	app.SessionMutex.RUnlock()
	if ok {
		return record, true
	}
	record, err := app.loadScoreRecord(sessionID)
	if err != nil {
		return types.ScoreRecord{}, false
	}
	return record, true
}

// vocabularySize returns the number of playable words, or 0 if the vocabulary
// cannot back a game.
func (app *App) vocabularySize() int {
	q, err := game.NewWordQueue(app.Vocabulary)
	if err != nil {
		return 0
	}
	return q.Size()
}

// toGameView converts a snapshot to its JSON form.
func toGameView(snap game.Snapshot) types.GameView {
	return types.GameView{
		Phase:            snap.Phase.String(),
		Word:             snap.Word,
		Score:            snap.Score,
		RemainingSeconds: snap.RemainingSeconds,
		TimeDisplay:      snap.TimeDisplay,
		Hint: types.HintView{
			Length:   snap.Hint.Length,
			Position: snap.Hint.Position,
			Letter:   snap.Hint.Letter,
			Text:     snap.Hint.String(),
		},
		Finished: snap.Finished,
		Version:  snap.Version,
	}
}

package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"guesstheword/internal/types"
)

var errInvalidSessionID = errors.New("invalid session ID format")

// scorePath returns the score file for a session. Only UUID session IDs are
// accepted so that the ID cannot escape ScoreDir.
func (app *App) scorePath(sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil || len(sessionID) != 36 {
		return "", errInvalidSessionID
	}
	return filepath.Join(app.ScoreDir, id.String()+".json"), nil
}

// saveScoreRecord persists a finished game's score to disk.
func (app *App) saveScoreRecord(record types.ScoreRecord) error {
	if app.ScoreDir == "" {
		return nil
	}
	scoreFile, err := app.scorePath(record.SessionID)
	if err != nil {
		logWarn("Skipping save for invalid session ID: %q", record.SessionID)
		return nil
	}

	if err := os.MkdirAll(app.ScoreDir, 0755); err != nil {
		logWarn("Failed to create score directory: %v", err)
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(scoreFile, data, 0644); err != nil {
		logWarn("Failed to write score file %s: %v", scoreFile, err)
		return err
	}
	logInfo("Saved score file: %s", scoreFile)
	return nil
}

// loadScoreRecord loads a session's last score from disk. Expired or corrupted
// files are removed and reported as missing.
func (app *App) loadScoreRecord(sessionID string) (types.ScoreRecord, error) {
	if app.ScoreDir == "" {
		return types.ScoreRecord{}, os.ErrNotExist
	}
	scoreFile, err := app.scorePath(sessionID)
	if err != nil {
		return types.ScoreRecord{}, os.ErrNotExist
	}

	info, err := os.Stat(scoreFile)
	if err != nil {
		return types.ScoreRecord{}, err
	}

	if age := time.Since(info.ModTime()); app.ScoreRetention > 0 && age > app.ScoreRetention {
		logInfo("Score file is too old (%v, max: %v), removing: %s", age, app.ScoreRetention, scoreFile)
		_ = os.Remove(scoreFile)
		return types.ScoreRecord{}, os.ErrNotExist
	}

	data, err := os.ReadFile(scoreFile)
	if err != nil {
		return types.ScoreRecord{}, err
	}

	var record types.ScoreRecord
	if err := json.Unmarshal(data, &record); err != nil || record.SessionID != sessionID {
		logWarn("Score file %s is corrupted, removing", scoreFile)
		_ = os.Remove(scoreFile)
		return types.ScoreRecord{}, os.ErrNotExist
	}
	return record, nil
}

// cleanupOldScores removes score files older than maxAge.
func (app *App) cleanupOldScores(maxAge time.Duration) error {
	if app.ScoreDir == "" {
		return nil
	}
	entries, err := os.ReadDir(app.ScoreDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logWarn("Failed to read score directory: %v", err)
		return err
	}

	cutoff := time.Now().Add(-maxAge)
	removedCount := 0
	errorCount := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			errorCount++
			continue
		}

		if info.ModTime().Before(cutoff) {
			scoreFile := filepath.Join(app.ScoreDir, entry.Name())
			if err := os.Remove(scoreFile); err != nil {
				logWarn("Failed to remove old score file %s: %v", scoreFile, err)
				errorCount++
			} else {
				removedCount++
			}
		}
	}

	logInfo("Score cleanup completed: removed %d files, %d errors", removedCount, errorCount)
	return nil
}

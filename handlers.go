package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"guesstheword/internal/game"
	"guesstheword/internal/score"
	"guesstheword/internal/types"
)

// homeHandler renders the game page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Guess The Word",
		"game":  toGameView(entry.game.Snapshot()),
	})
}

// gameStateHandler returns the current snapshot as JSON.
func (app *App) gameStateHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameView(entry.game.Snapshot()))
}

// startHandler starts or restarts the countdown. With ?reset=1 the session ID
// is rotated and the old game discarded first.
func (app *App) startHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)

	if c.Query("reset") == "1" {
		app.closeSession(sessionID)
		sessionID = uuid.NewString()
		app.setSessionCookie(c, sessionID)
		logInfo("[request_id=%v] Created new session ID: %s", requestID(c), sessionID)
	}

	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}
	if err := entry.game.Start(); err != nil {
		app.abortGameError(c, sessionID, err)
		return
	}
	logInfo("[request_id=%v] Started game for session %s", requestID(c), sessionID)
	c.JSON(http.StatusOK, toGameView(entry.game.Snapshot()))
}

// correctHandler records a correct guess.
func (app *App) correctHandler(c *gin.Context) {
	app.trigger(c, "correct", (*game.Session).OnCorrect)
}

// skipHandler records a skipped word.
func (app *App) skipHandler(c *gin.Context) {
	app.trigger(c, "skip", (*game.Session).OnSkip)
}

func (app *App) trigger(c *gin.Context, name string, fn func(*game.Session) error) {
	sessionID := app.getOrCreateSession(c)
	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}
	if err := fn(entry.game); err != nil {
		app.abortGameError(c, sessionID, err)
		return
	}
	snap := entry.game.Snapshot()
	logInfo("[request_id=%v] Session %s %s, score now %d", requestID(c), sessionID, name, snap.Score)
	c.JSON(http.StatusOK, toGameView(snap))
}

// acknowledgeHandler clears the finished signal and points the client at the score view.
func (app *App) acknowledgeHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}
	if err := entry.game.AcknowledgeFinished(); err != nil {
		app.abortGameError(c, sessionID, err)
		return
	}
	finalScore := entry.game.Snapshot().Score
	c.JSON(http.StatusOK, types.AcknowledgeResponse{
		FinalScore: finalScore,
		ScoreURL:   RouteScore + "?" + url.Values{ScoreViewQueryKey: {string(score.KindFinal)}}.Encode(),
	})
}

// scoreHandler renders the final score view for the session's last finished game.
func (app *App) scoreHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	record, ok := app.finalScore(sessionID)
	if !ok {
		c.HTML(http.StatusNotFound, "score.html", gin.H{"title": "Score", "error": ErrorNoScore})
		return
	}

	view, err := score.NewFactory(record.Score).Create(score.ParseKind(c.Query(ScoreViewQueryKey)))
	if err != nil {
		logWarn("[request_id=%v] Score view rejected: %v", requestID(c), err)
		c.HTML(http.StatusBadRequest, "score.html", gin.H{"title": "Score", "error": ErrorUnknownView})
		return
	}

	c.HTML(http.StatusOK, "score.html", gin.H{
		"title":      "Score",
		"score":      strconv.Itoa(view.Score()),
		"finishedAt": record.FinishedAt.Format(time.RFC1123),
	})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"vocabulary_size": app.vocabularySize(),
		"active_sessions": app.activeSessions(),
		"uptime":          formatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// gameErrorStatus maps a rejected trigger to an HTTP status and client
// message. ok is false for errors that are not the client's fault.
func gameErrorStatus(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, game.ErrNotRunning):
		return http.StatusConflict, ErrorNotRunning, true
	case errors.Is(err, game.ErrNotFinished):
		return http.StatusConflict, ErrorNotFinished, true
	case errors.Is(err, game.ErrNotAcknowledged):
		return http.StatusConflict, ErrorNotAcknowledged, true
	case errors.Is(err, game.ErrClosed):
		return http.StatusGone, ErrorSessionClosed, true
	case errors.Is(err, errUnknownAction):
		return http.StatusBadRequest, ErrorUnknownAction, true
	}
	return http.StatusInternalServerError, ErrorInternal, false
}

// abortGameError maps session errors to HTTP status codes.
func (app *App) abortGameError(c *gin.Context, sessionID string, err error) {
	status, msg, ok := gameErrorStatus(err)
	if !ok {
		app.abortInternal(c, err)
		return
	}
	logWarn("[request_id=%v] Session %s: %v", requestID(c), sessionID, err)
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: msg})
}

func (app *App) abortInternal(c *gin.Context, err error) {
	logWarn("[request_id=%v] Internal error: %v", requestID(c), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: ErrorInternal})
}

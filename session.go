package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		app.setSessionCookie(c, sessionID)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

func (app *App) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
}

// getSessionEntry retrieves or creates the game for a session and marks it used.
func (app *App) getSessionEntry(sessionID string) (*sessionEntry, error) {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	if entry, ok := app.Sessions[sessionID]; ok {
		entry.lastAccess = time.Now()
		return entry, nil
	}

	logInfo("Creating new game for session: %s", sessionID)
	g, err := app.newGameSession(sessionID)
	if err != nil {
		return nil, err
	}
	entry := &sessionEntry{game: g, lastAccess: time.Now()}
	app.Sessions[sessionID] = entry
	return entry, nil
}

// touchSession marks a session as used. It reports false if the session is
// no longer registered.
func (app *App) touchSession(sessionID string) bool {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	entry, ok := app.Sessions[sessionID]
	if ok {
		entry.lastAccess = time.Now()
	}
	return ok
}

// closeSession stops the session's game and forgets it.
func (app *App) closeSession(sessionID string) {
	app.SessionMutex.Lock()
	entry, ok := app.Sessions[sessionID]
	delete(app.Sessions, sessionID)
	app.SessionMutex.Unlock()
	if ok {
		entry.game.Close()
		logInfo("Closed game for session: %s", sessionID)
	}
}

// sweepIdleSessions closes sessions not used within SessionTimeout.
func (app *App) sweepIdleSessions(now time.Time) int {
	app.SessionMutex.Lock()
	idle := lo.PickBy(app.Sessions, func(_ string, entry *sessionEntry) bool {
		return now.Sub(entry.lastAccess) > app.SessionTimeout
	})
	for id := range idle {
		delete(app.Sessions, id)
		delete(app.FinalScores, id)
	}
	app.SessionMutex.Unlock()

	for id, entry := range idle {
		entry.game.Close()
		logInfo("Expired idle session: %s", id)
	}
	return len(idle)
}

// closeAllSessions stops every countdown; used on shutdown.
func (app *App) closeAllSessions() {
	app.SessionMutex.Lock()
	entries := lo.Values(app.Sessions)
	app.Sessions = make(map[string]*sessionEntry)
	app.SessionMutex.Unlock()

	lo.ForEach(entries, func(entry *sessionEntry, _ int) {
		entry.game.Close()
	})
	logInfo("Closed %d sessions", len(entries))
}

// activeSessions returns the number of registered sessions.
func (app *App) activeSessions() int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.Sessions)
}

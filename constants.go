package main

import "errors"

// Session configuration constants
const (
	SessionCookieName = "session_id"
	ScoreViewQueryKey = "view"
)

// Route constants
const (
	RouteHome        = "/"
	RouteGameState   = "/game/state"
	RouteStart       = "/game/start"
	RouteCorrect     = "/game/correct"
	RouteSkip        = "/game/skip"
	RouteAcknowledge = "/game/acknowledge"
	RouteScore       = "/score"
	RouteWebSocket   = "/ws"
	RouteHealth      = "/healthz"
)

// Error message constants
const (
	ErrorNotRunning      = "game is not running"
	ErrorNotFinished     = "game has not finished"
	ErrorNotAcknowledged = "acknowledge the finished game first"
	ErrorSessionClosed   = "session has ended"
	ErrorUnknownView     = "unknown score view"
	ErrorNoScore         = "no finished game for this session"
	ErrorRateLimited     = "Too many requests. Please slow down."
	ErrorUnknownAction   = "unknown action"
	ErrorMalformed       = "malformed message"
	ErrorInternal        = "internal error"
)

// errUnknownAction is returned for websocket actions the feed does not know.
var errUnknownAction = errors.New(ErrorUnknownAction)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)

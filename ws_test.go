package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"guesstheword/internal/game"
	"guesstheword/internal/types"
)

func dialFeed(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteWebSocket
	header := http.Header{}
	header.Set("Cookie", SessionCookieName+"="+sessionID)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readView(t *testing.T, conn *websocket.Conn) types.GameView {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var view types.GameView
	if err := conn.ReadJSON(&view); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return view
}

func TestWebSocketFeed(t *testing.T) {
	app, sched := newTestApp(t)
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close) // runs after the client conn is closed

	sessionID := uuid.NewString()
	conn := dialFeed(t, srv, sessionID)

	if view := readView(t, conn); view.Phase != "idle" {
		t.Fatalf("first message phase = %q, want idle", view.Phase)
	}

	if err := conn.WriteJSON(wsAction{Action: "start"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if view := readView(t, conn); view.Phase != "running" || view.RemainingSeconds != 60 {
		t.Fatalf("after start = %+v", view)
	}

	sched.Advance(1)
	if view := readView(t, conn); view.RemainingSeconds != 59 || view.TimeDisplay != "00:59" {
		t.Errorf("after one tick = %+v", view)
	}

	if err := conn.WriteJSON(wsAction{Action: "correct"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if view := readView(t, conn); view.Score != 1 {
		t.Errorf("after correct score = %d, want 1", view.Score)
	}
}

func TestWebSocketFeed_SeesHTTPTriggers(t *testing.T) {
	app, _ := newTestApp(t)
	router := app.setupRouter()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close) // runs after the client conn is closed

	sessionID := uuid.NewString()
	conn := dialFeed(t, srv, sessionID)
	readView(t, conn)

	cookie := &http.Cookie{Name: SessionCookieName, Value: sessionID}
	doRequest(router, "POST", RouteStart, cookie)
	doRequest(router, "POST", RouteSkip, cookie)

	if view := readView(t, conn); view.Phase != "running" {
		t.Errorf("pushed phase = %q, want running", view.Phase)
	}
	if view := readView(t, conn); view.Score != -1 {
		t.Errorf("pushed score = %d, want -1", view.Score)
	}
}

func TestFeedClientApply_UnknownAction(t *testing.T) {
	app, _ := newTestApp(t)
	entry, err := app.getSessionEntry(uuid.NewString())
	if err != nil {
		t.Fatalf("getSessionEntry failed: %v", err)
	}
	fc := &feedClient{session: entry.game, send: make(chan []byte, 1), done: make(chan struct{})}
	if err := fc.apply("dance"); err != errUnknownAction {
		t.Errorf("apply(dance) = %v, want errUnknownAction", err)
	}
	if err := fc.apply("state"); err != nil || len(fc.send) != 1 {
		t.Errorf("apply(state) = %v with %d queued, want nil and 1", err, len(fc.send))
	}
}

// readFrame reads one frame as either a snapshot or an error body.
func readFrame(t *testing.T, conn *websocket.Conn) (types.GameView, types.ErrorResponse) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var view types.GameView
	var errResp types.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if errResp.Error == "" {
		if err := json.Unmarshal(data, &view); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
	}
	return view, errResp
}

func TestWebSocketFeed_RateLimited(t *testing.T) {
	app, _ := newTestApp(t)
	app.RateLimitRPS = 1
	app.RateLimitBurst = 2
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close) // runs after the client conn is closed

	sessionID := uuid.NewString()
	conn := dialFeed(t, srv, sessionID)
	readView(t, conn)

	const actions = 12
	_ = conn.WriteJSON(wsAction{Action: "start"})
	for range actions - 1 {
		_ = conn.WriteJSON(wsAction{Action: "correct"})
	}

	limited := 0
	for range actions {
		if _, errResp := readFrame(t, conn); errResp.Error == ErrorRateLimited {
			limited++
		}
	}
	if limited < actions-4 {
		t.Errorf("rate limited %d of %d actions, want at least %d", limited, actions, actions-4)
	}
	entry, _ := app.getSessionEntry(sessionID)
	if got := entry.game.Snapshot().Score; got > 3 {
		t.Errorf("score = %d, want the limiter to reject most corrects", got)
	}
}

func TestWebSocketFeed_RefreshesIdleClock(t *testing.T) {
	app, _ := newTestApp(t)
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close) // runs after the client conn is closed

	sessionID := uuid.NewString()
	conn := dialFeed(t, srv, sessionID)
	readView(t, conn)

	stale := time.Now().Add(-app.SessionTimeout - time.Minute)
	app.SessionMutex.Lock()
	app.Sessions[sessionID].lastAccess = stale
	app.SessionMutex.Unlock()

	_ = conn.WriteJSON(wsAction{Action: "start"})
	readView(t, conn)

	app.SessionMutex.RLock()
	touched := app.Sessions[sessionID].lastAccess.After(stale)
	app.SessionMutex.RUnlock()
	if !touched {
		t.Fatal("websocket action did not refresh lastAccess")
	}
	if n := app.sweepIdleSessions(time.Now()); n != 0 {
		t.Errorf("sweepIdleSessions closed %d sessions in play, want 0", n)
	}
}

func TestWebSocketFeed_ClosedSessionEndsFeed(t *testing.T) {
	app, _ := newTestApp(t)
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close) // runs after the client conn is closed

	sessionID := uuid.NewString()
	conn := dialFeed(t, srv, sessionID)
	readView(t, conn)

	app.closeSession(sessionID)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("ReadMessage after close = %v, want normal close frame", err)
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Text != ErrorSessionClosed {
		t.Errorf("close reason = %q, want %q", closeErr.Text, ErrorSessionClosed)
	}
}

func TestWebSocketFeed_ErrorFrames(t *testing.T) {
	app, _ := newTestApp(t)
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close) // runs after the client conn is closed

	conn := dialFeed(t, srv, uuid.NewString())
	readView(t, conn)

	tests := []struct {
		message string
		want    string
	}{
		{`{"action":"correct"}`, ErrorNotRunning},
		{`{"action":"acknowledge"}`, ErrorNotFinished},
		{`{"action":"dance"}`, ErrorUnknownAction},
		{`not json`, ErrorMalformed},
	}
	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.message)); err != nil {
			t.Fatalf("WriteMessage failed: %v", err)
		}
		if _, errResp := readFrame(t, conn); errResp.Error != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.message, errResp.Error, tt.want)
		}
	}
}

func TestFeedClientPush_DropsStaleSnapshots(t *testing.T) {
	fc := &feedClient{send: make(chan []byte, 4), done: make(chan struct{})}
	fc.push(game.Snapshot{Version: 2})
	fc.push(game.Snapshot{Version: 1})
	fc.push(game.Snapshot{Version: 2})
	fc.push(game.Snapshot{Version: 3})
	if len(fc.send) != 3 {
		t.Errorf("queued %d snapshots, want 3", len(fc.send))
	}
}

func TestGameErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
		ok     bool
	}{
		{game.ErrNotRunning, http.StatusConflict, ErrorNotRunning, true},
		{game.ErrNotFinished, http.StatusConflict, ErrorNotFinished, true},
		{game.ErrNotAcknowledged, http.StatusConflict, ErrorNotAcknowledged, true},
		{game.ErrClosed, http.StatusGone, ErrorSessionClosed, true},
		{errUnknownAction, http.StatusBadRequest, ErrorUnknownAction, true},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrorInternal, false},
	}
	for _, tt := range tests {
		status, msg, ok := gameErrorStatus(tt.err)
		if status != tt.status || msg != tt.msg || ok != tt.ok {
			t.Errorf("gameErrorStatus(%v) = %d, %q, %v; want %d, %q, %v", tt.err, status, msg, ok, tt.status, tt.msg, tt.ok)
		}
	}
}

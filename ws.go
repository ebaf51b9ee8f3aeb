package main

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"guesstheword/internal/game"
	"guesstheword/internal/types"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Size of the send channel buffer
	sendBufferSize = 64
)

// wsAction is a trigger sent by the client over the socket.
type wsAction struct {
	Action string `json:"action"`
}

// feedClient forwards snapshots of one session to one websocket.
type feedClient struct {
	app       *App
	conn      *websocket.Conn
	sessionID string
	clientIP  string
	session   *game.Session
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu          sync.Mutex
	lastVersion uint64
}

func (app *App) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || !app.IsProduction {
				return true
			}
			return slices.Contains(app.CORSOrigins, origin) || origin == "https://"+r.Host
		},
	}
}

// wsHandler upgrades the connection and streams every state change of the session.
func (app *App) wsHandler(c *gin.Context) {
	sessionID := app.getOrCreateSession(c)
	entry, err := app.getSessionEntry(sessionID)
	if err != nil {
		app.abortInternal(c, err)
		return
	}

	conn, err := app.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logWarn("[request_id=%v] Websocket upgrade failed: %v", requestID(c), err)
		return
	}

	client := &feedClient{
		app:       app,
		conn:      conn,
		sessionID: sessionID,
		clientIP:  c.ClientIP(),
		session:   entry.game,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
	}
	unsubscribe := entry.game.Subscribe(client.push)
	client.push(entry.game.Snapshot())
	logInfo("Websocket connected for session %s", sessionID)

	go client.writePump()
	client.readPump()

	unsubscribe()
	client.close()
	logInfo("Websocket closed for session %s", sessionID)
}

// push queues a snapshot, dropping it if it is older than one already queued
// or if the client is not keeping up.
func (fc *feedClient) push(snap game.Snapshot) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if snap.Version < fc.lastVersion {
		return
	}
	fc.lastVersion = snap.Version
	data, err := json.Marshal(toGameView(snap))
	if err != nil {
		logWarn("Failed to marshal snapshot: %v", err)
		return
	}
	fc.enqueue(data)
}

// sendError queues an error frame with the same body the HTTP routes use.
func (fc *feedClient) sendError(msg string) {
	data, err := json.Marshal(types.ErrorResponse{Error: msg})
	if err != nil {
		logWarn("Failed to marshal error frame: %v", err)
		return
	}
	fc.enqueue(data)
}

func (fc *feedClient) enqueue(data []byte) {
	select {
	case <-fc.done:
	case fc.send <- data:
	default:
		logWarn("Send buffer full for session %s, snapshot dropped", fc.sessionID)
	}
}

func (fc *feedClient) close() {
	fc.closeOnce.Do(func() {
		close(fc.done)
		_ = fc.conn.Close()
	})
}

// readPump applies actions sent by the client until the connection fails.
func (fc *feedClient) readPump() {
	fc.conn.SetReadLimit(maxMessageSize)
	_ = fc.conn.SetReadDeadline(time.Now().Add(pongWait))
	fc.conn.SetPongHandler(func(string) error {
		return fc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := fc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logWarn("Websocket read error for session %s: %v", fc.sessionID, err)
			}
			return
		}

		var msg wsAction
		if err := json.Unmarshal(message, &msg); err != nil {
			logWarn("Ignoring malformed websocket message for session %s: %v", fc.sessionID, err)
			fc.sendError(ErrorMalformed)
			continue
		}
		if msg.Action != "state" && !fc.app.getLimiter(fc.clientIP).Allow() {
			logWarn("Rate limit exceeded for %s on websocket", fc.clientIP)
			fc.sendError(ErrorRateLimited)
			continue
		}
		fc.app.touchSession(fc.sessionID)

		if err := fc.apply(msg.Action); err != nil {
			logWarn("Websocket action %q for session %s: %v", msg.Action, fc.sessionID, err)
			_, text, _ := gameErrorStatus(err)
			fc.sendError(text)
		}
	}
}

func (fc *feedClient) apply(action string) error {
	switch action {
	case "start":
		return fc.session.Start()
	case "correct":
		return fc.session.OnCorrect()
	case "skip":
		return fc.session.OnSkip()
	case "acknowledge":
		return fc.session.AcknowledgeFinished()
	case "state":
		fc.push(fc.session.Snapshot())
		return nil
	}
	return errUnknownAction
}

// writePump writes queued snapshots and keeps the connection alive with pings.
func (fc *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		fc.close()
	}()

	for {
		select {
		case <-fc.done:
			return
		case <-fc.session.Done():
			fc.flush()
			_ = fc.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrorSessionClosed),
				time.Now().Add(writeWait))
			return
		case data := <-fc.send:
			_ = fc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := fc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = fc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := fc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is still queued without waiting for more.
func (fc *feedClient) flush() {
	for {
		select {
		case data := <-fc.send:
			_ = fc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := fc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

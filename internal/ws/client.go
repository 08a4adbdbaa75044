package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 512                 // Maximum message size allowed from peer.
	sendBuffer     = 256
)

// Client is one websocket connection. It owns at most one session.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// done is closed when the hub drops the client. send is never closed.
	done      chan struct{}
	closeOnce sync.Once

	// session is only touched by readPump.
	session *Session
}

// ServeWs handles WebSocket connection requests and upgrades them
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     hub.opts.CheckOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.Fields{
			"remote": r.RemoteAddr, "origin": r.Header.Get("Origin"), "error": err.Error(),
		})
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}
	logger.Info("WebSocket connected", logger.Fields{"client": client.id, "remote": r.RemoteAddr})

	go client.writePump()
	go client.readPump()
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump continuously reads messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.endSession()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		logger.Info("WebSocket disconnected", logger.Fields{"client": c.id})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn("WebSocket read error", logger.Fields{"client": c.id, "error": err.Error()})
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("", "malformed message")
			continue
		}
		logger.Debug("Message received", logger.Fields{"client": c.id, "type": msg.Type})
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	switch msg.Type {
	case TypeNewGame:
		var p NewGamePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			c.sendError("", "invalid newGame payload")
			return
		}
		c.hub.handleNewGame(c, p)

	case TypeMove:
		var p MovePayload
		if err := decodePayload(msg.Payload, &p); err != nil || p.Column == nil {
			c.sendError(c.gameID(), "move needs a column")
			return
		}
		c.hub.handleMove(c, *p.Column)

	case TypeRestart:
		c.hub.handleRestart(c)

	case TypeState:
		c.hub.handleState(c)

	case TypeEndGame:
		c.hub.handleEndGame(c)

	default:
		c.sendError(c.gameID(), "unknown message type "+msg.Type)
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (c *Client) gameID() string {
	if c.session == nil {
		return ""
	}
	return c.session.currentGameID()
}

// sendMessage queues msg for the write pump. It never blocks.
func (c *Client) sendMessage(msg GameMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Error marshaling message", logger.Fields{"type": msg.Type, "error": err.Error()})
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		logger.Warn("Send buffer full, dropping message", logger.Fields{"client": c.id, "type": msg.Type})
	}
}

func (c *Client) sendError(gameID, text string) {
	c.sendMessage(GameMessage{Type: TypeError, GameID: gameID, Payload: ErrorPayload{Message: text}})
}

// writePump continuously writes messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

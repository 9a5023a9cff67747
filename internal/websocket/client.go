package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/princekumarofficial/videos-service/internal/types"
)

const (
	writeWait = 10 * time.Second

	// A subscriber that misses pongs for this long is dropped.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames; anything larger is a misuse.
	maxMessageSize = 512

	// Video events queued per subscriber before it counts as slow.
	sendBuffer = 256
)

var errSlowClient = errors.New("client send buffer is full")

// Client is one subscriber to the video change feed.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	id   string

	// Encoded video events. Closed by the hub only.
	send chan []byte
}

func NewClient(conn *websocket.Conn, id string, hub *Hub) *Client {
	return &Client{
		conn: conn,
		hub:  hub,
		id:   id,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Start runs the subscriber until either side closes the connection.
func (c *Client) Start() {
	go c.deliverEvents()
	go c.awaitClose()
}

// SendEvent queues a video event for delivery. It never blocks the hub loop.
func (c *Client) SendEvent(event *types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSlowClient
	}
}

// awaitClose keeps reading so pong and close frames are handled, then leaves the hub.
func (c *Client) awaitClose() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Video feed subscriber dropped",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

// deliverEvents writes queued video events, one JSON event per text frame,
// and pings the subscriber while the feed is idle.
func (c *Client) deliverEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, open := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package live

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client pumps one subscription onto one websocket connection.
type Client struct {
	Conn   *websocket.Conn
	Sub    *Subscriber
	Cancel func()
	Logger *slog.Logger
}

// WriteSnapshot sends the first value of the stream directly, before the
// pumps start, so it always precedes queued events.
func (c *Client) WriteSnapshot(snapshot []byte) error {
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, snapshot)
}

// Complete ends a one-shot subscription with a normal close frame.
func (c *Client) Complete() {
	c.Cancel()
	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "snapshot complete")
	if err := c.Conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		c.Logger.Debug("failed to write close frame", slog.Any("error", err))
	}
	c.Conn.Close()
}

// ReadPump discards client input and detects disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.Cancel()
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Warn("live client read error", slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Cancel()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Sub.C():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Logger.Debug("live client write error", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

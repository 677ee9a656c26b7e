package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"anonrelay/logger"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 25 * time.Second
	readWait     = 60 * time.Second
)

// Client is one live connection with its assigned identity. The registry owns
// it for the connection's lifetime; a single writer goroutine consumes Send.
type Client struct {
	ConnID   string
	Identity Identity
	WS       *websocket.Conn
	Send     chan []byte
	Remote   string // origin key for rate limiting
	JoinedAt time.Time

	lastActive atomic.Int64
	closeOnce  sync.Once
}

func NewClient(connID string, id Identity, ws *websocket.Conn, remote string, queueSize int) *Client {
	c := &Client{
		ConnID:   connID,
		Identity: id,
		WS:       ws,
		Send:     make(chan []byte, queueSize),
		Remote:   remote,
		JoinedAt: time.Now(),
	}
	c.Touch()
	return c
}

// Touch records activity on the connection.
func (c *Client) Touch() {
	c.lastActive.Store(time.Now().UnixMilli())
}

func (c *Client) LastActive() time.Time {
	return time.UnixMilli(c.lastActive.Load())
}

// Close shuts the outbound queue down exactly once; the write pump sends the
// close frame and closes the socket when the queue drains.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// enqueue offers a payload without blocking; a full queue means a slow client
// and the frame is dropped rather than stalling the caller.
func (c *Client) enqueue(payload []byte) bool {
	defer func() {
		// Send may race with Close on teardown paths.
		_ = recover()
	}()
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// writePump consumes the outbound queue and keeps the connection alive with
// websocket pings. It is the only goroutine writing to the socket.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WS.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.WS.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			if !ok {
				return
			}
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[relay] write err conn=%s user=%s err=%v", c.ConnID, c.Identity.Label, err)
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				logger.Infof("[relay] ping err conn=%s user=%s err=%v", c.ConnID, c.Identity.Label, err)
				return
			}
		}
	}
}

package relay

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"anonrelay/logger"
	"anonrelay/middleware"
	"anonrelay/tools/errs"
	"anonrelay/tools/safe"
)

const (
	readLimit     = 8 << 10 // content caps at 1000 chars, envelope included
	sendQueueSize = 64
)

// Upgrader builds the websocket upgrader with the configured origin policy.
func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     middleware.CheckOrigin(s.cfg.AllowedOrigins),
	}
}

// HandleWS owns one connection from upgrade to teardown. Lifecycle:
// Connecting -> Active on registration (identity, init snapshot, presence
// broadcast), Active -> Closed on transport close or error (deregister,
// presence broadcast). No events are processed after close.
func (s *Server) HandleWS(c *gin.Context) {
	origin := c.ClientIP()

	// Connection-attempt admission happens before the upgrade so a rejected
	// client gets a plain 429 with a retry hint. The limit scales down under
	// load to keep reconnect storms bounded.
	if d := s.connLimit.Admit(c.Request.Context(), origin); !d.Allowed {
		retry := d.RetryAfter(time.Now())
		c.Header("Retry-After", strconv.Itoa(retry))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message":    "too many connection attempts",
			"retryAfter": retry,
		})
		return
	}

	up := s.upgrader()
	ws, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[relay] upgrade failed from %s: %v", origin, err)
		return
	}

	client := NewClient(uuid.NewString(), s.identity.Allocate(), ws, origin, sendQueueSize)

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		client.Touch()
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})

	safe.Go(client.writePump)

	// Connecting -> Active.
	s.registry.Register(client)
	logger.Infof("[relay] connected conn=%s user=%s origin=%s total=%d",
		client.ConnID, client.Identity.Label, origin, s.registry.Count())

	snapshot, err := s.store.Recent(context.Background(), s.cfg.HistoryCapacity)
	if err != nil {
		logger.Warnf("[relay] snapshot unavailable conn=%s: %v", client.ConnID, err)
	}
	client.enqueue(BuildInit(client.Identity, snapshot))
	s.broadcastUserCount()

	s.readLoop(client)

	// Active -> Closed.
	s.registry.Deregister(client.ConnID)
	client.Close()
	s.broadcastUserCount()
	logger.Infof("[relay] closed conn=%s user=%s total=%d",
		client.ConnID, client.Identity.Label, s.registry.Count())
}

// readLoop handles this connection's inbound events to completion, one at a
// time; other connections proceed independently.
func (s *Server) readLoop(client *Client) {
	ws := client.WS
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[relay] peer closed conn=%s err=%v", client.ConnID, err)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[relay] read timeout conn=%s err=%v", client.ConnID, err)
			} else {
				logger.Infof("[relay] read err conn=%s err=%v", client.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		client.Touch()
		_ = ws.SetReadDeadline(time.Now().Add(readWait))

		s.handleFrame(client, data)
	}
}

// handleFrame decodes and dispatches one inbound frame. Undecodable JSON is a
// protocol error: logged, not answered, and never drops the connection. A
// frame that decodes but breaks the event shape is a validation rejection and
// is answered with an error event.
func (s *Server) handleFrame(client *Client, data []byte) {
	frame, perr := ParseInbound(data)
	if perr != nil {
		sample := data
		if len(sample) > 256 {
			sample = sample[:256]
		}
		logger.Infof("[relay] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
		if errs.CodeOf(perr) == errs.CodeInvalidMessage {
			client.enqueue(BuildError("invalid message", 0))
		}
		return
	}

	switch frame.Type {
	case TypePing:
		// Does not consume the message-send budget.
		client.enqueue(BuildPong())
	case TypeMessage:
		// The request context dies with the HTTP handler on some
		// teardown paths; store and limiter calls carry their own
		// timeouts.
		s.handleMessage(context.Background(), client, frame)
	default:
		logger.Infof("[relay] unknown frame type=%q conn=%s", frame.Type, client.ConnID)
	}
}

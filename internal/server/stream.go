package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tasktrack/internal/models"
)

// maxControlMessage bounds inbound frames; clients only send keepalives.
const maxControlMessage = 512

// wsConn adapts a WebSocket to notify.Conn. Writes are serialised because
// gorilla connections allow a single concurrent writer.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

// Send writes event as a JSON text frame.
func (w *wsConn) Send(event models.ChangeEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(event)
}

func (w *wsConn) closeWith(code int, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(w.writeTimeout))
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// handleStream upgrades to a WebSocket and pushes tasks_changed events for a
// list until the client disconnects. The token travels in the query string
// because browsers cannot set headers on WebSocket handshakes.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	ws := newWSConn(conn, s.opts.WriteTimeout)
	defer ws.Close()

	ctx := c.Request.Context()
	user, err := s.auth.Authenticate(ctx, c.Query("token"))
	if err != nil {
		ws.closeWith(websocket.ClosePolicyViolation, "invalid token")
		return
	}

	listID := c.Param("list_id")
	if _, err := s.tasks.AuthorizeList(ctx, user, listID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("authorize stream", slog.String("list_id", listID), slog.String("error", err.Error()))
			ws.closeWith(websocket.CloseInternalServerErr, "internal server error")
			return
		}
		ws.closeWith(websocket.ClosePolicyViolation, "task list not found")
		return
	}

	s.registry.Subscribe(listID, ws)
	defer s.registry.Unsubscribe(listID, ws)
	s.logger.Debug("subscriber connected", slog.String("list_id", listID), slog.String("user_id", user.ID))

	conn.SetReadLimit(maxControlMessage)
	for {
		// Inbound frames are ignored; reading only detects disconnects.
		if _, _, err := conn.ReadMessage(); err != nil {
			s.logger.Debug("subscriber disconnected", slog.String("list_id", listID), slog.String("error", err.Error()))
			return
		}
	}
}

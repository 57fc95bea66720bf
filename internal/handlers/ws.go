package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/eldtechnologies/bazaar/internal/api/middleware"
	"github.com/eldtechnologies/bazaar/internal/metrics"
	"github.com/eldtechnologies/bazaar/internal/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 32
)

// Auth is token-based, not cookie-based, so cross-origin upgrades carry no
// ambient credentials.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSession is one live websocket subscription to a product room.
type wsSession struct {
	conn *websocket.Conn
	send chan *models.Message
}

// Deliver queues msg for the write pump. A session whose buffer is full
// drops the message rather than stalling the publisher.
func (s *wsSession) Deliver(msg *models.Message) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// Subscribe upgrades the connection and streams new messages for a product
// until the client disconnects.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	if err := h.chat.CheckRoom(r.Context(), productID); err != nil {
		h.ServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := &wsSession{conn: conn, send: make(chan *models.Message, wsSendBuffer)}
	h.hub.Subscribe(productID, session)
	metrics.LiveSubscribers.Inc()

	h.logger.Debug().
		Str("product_id", productID).
		Str("user_id", user.ID.String()).
		Msg("websocket subscribed")

	go h.writePump(session)
	h.readPump(session, productID)
}

// readPump discards inbound frames and unsubscribes on disconnect. Sending
// happens over the REST endpoint; the socket is delivery-only.
func (h *Handler) readPump(s *wsSession, productID string) {
	defer func() {
		h.hub.Unsubscribe(productID, s)
		metrics.LiveSubscribers.Dec()
		close(s.send)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes queued messages onto the socket and keeps the
// connection alive with pings.
func (h *Handler) writePump(s *wsSession) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				s.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(wsWriteWait))
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// IdentityResolver никогда не отклоняет подключение: невалидный credential
// деградирует до гостя.
type IdentityResolver interface {
	ResolveIdentity(credential string) domain.Identity
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	relay    *Relay
	resolver IdentityResolver

	pingEvery time.Duration
}

func NewServer(hub *Hub, relay *Relay, resolver IdentityResolver) *Server {
	return &Server{
		hub:      hub,
		relay:    relay,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws, credential — cookie "token".
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	var credential string
	if cookie, err := r.Cookie("token"); err == nil {
		credential = cookie.Value
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	identity := s.resolver.ResolveIdentity(credential)
	connID := uuid.NewString()

	c := newWsConn(conn, connID, identity)
	s.hub.Add(c)
	slog.Info("client connected", "conn", connID, "user", identity.Username)

	go s.pingLoop(c)
	s.readLoop(c)

	// ровно один вызов на время жизни подключения
	s.relay.HandleDisconnect(connID)
	_ = c.Close()
	slog.Info("client disconnected", "conn", connID)
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) dispatch(c *wsConn, msg Message) {
	switch msg.Type {
	case TypeJoin:
		var p JoinPayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.RoomID == "" {
			return
		}
		s.relay.HandleJoin(c, p.RoomID)

	case TypeSignalOffer, TypeSignalAnswer, TypeSignalICE:
		var p SignalPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}
		s.relay.HandleSignal(c, msg.Type, p)

	case TypeAdminTerminate:
		var p TerminatePayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.RoomID == "" {
			return
		}
		if err := s.relay.Terminate(p.RoomID, c.Identity()); err != nil {
			switch {
			case errors.Is(err, domain.ErrAdminRequired):
				_ = c.Send(NewMessage(TypeError, ErrorPayload{Message: "admin access required"}))
			case errors.Is(err, domain.ErrRoomNotFound):
				_ = c.Send(NewMessage(TypeError, ErrorPayload{Message: "room not found"}))
			}
		}

	default:
		// ignore
	}
}

func (s *Server) pingLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"
	"github.com/Askiater/speak-to-me/internal/registry"
	"github.com/Askiater/speak-to-me/internal/service"
)

// Relay реализует протокол join/offer/answer/ice поверх реестра и шлюза.
// Контент сигналинга не интерпретируется: релей маршрутизирует по адресату
// и членству в комнате, и только.
type Relay struct {
	hub      *Hub
	registry *registry.Registry
	ledger   service.Ledger

	maxParticipants int
}

func NewRelay(hub *Hub, reg *registry.Registry, ledger service.Ledger, maxParticipants int) *Relay {
	return &Relay{
		hub:             hub,
		registry:        reg,
		ledger:          ledger,
		maxParticipants: maxParticipants,
	}
}

func (r *Relay) HandleJoin(c Conn, roomID string) {
	if r.hub.RoomOf(c.ID()) != "" {
		r.sendError(c, "already in a room")
		return
	}

	id := c.Identity()
	p := domain.Participant{
		ConnectionID: c.ID(),
		UserID:       id.UserID,
		Username:     id.Username,
		JoinedAt:     time.Now(),
	}

	snap, err := r.registry.Join(roomID, p, r.maxParticipants)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			r.sendError(c, "room not found")
		case errors.Is(err, domain.ErrRoomFull):
			r.sendError(c, "room is full")
		default:
			slog.Error("relay join failed", "room", roomID, "conn", c.ID(), "err", err)
			r.sendError(c, "failed to join room")
		}
		return
	}

	r.hub.SetRoom(c.ID(), roomID)

	// уведомления — уже вне критической секции комнаты
	others := make([]PeerInfo, 0, len(snap.Participants))
	for _, sp := range snap.Participants {
		if sp.ConnectionID == c.ID() {
			continue
		}
		others = append(others, PeerInfo{ConnectionID: sp.ConnectionID, Username: sp.Username})
	}

	_ = c.Send(NewMessage(TypeRoomJoined, RoomJoinedPayload{
		RoomID:       roomID,
		Participants: others,
	}))

	joined := NewMessage(TypeUserJoined, PeerInfo{ConnectionID: c.ID(), Username: p.Username})
	for _, peer := range others {
		r.hub.Send(peer.ConnectionID, joined)
	}

	r.writeLedger("join", func(ctx context.Context) error {
		return r.ledger.RecordJoin(ctx, roomID, p.UserID, p.Username)
	})
	r.notifyAdmins()

	slog.Info("user joined room", "room", roomID, "conn", c.ID(), "user", p.Username)
}

// HandleSignal — точечный релей. Адресат обязан состоять в той же комнате,
// что и отправитель; иначе сообщение молча отбрасывается, чтобы не
// раскрывать существование чужих комнат.
func (r *Relay) HandleSignal(c Conn, msgType string, p SignalPayload) {
	if p.To == "" {
		return
	}
	roomID := r.hub.RoomOf(c.ID())
	if roomID == "" || r.hub.RoomOf(p.To) != roomID {
		return
	}

	out := p
	out.To = ""
	out.From = c.ID()
	r.hub.Send(p.To, NewMessage(msgType, out))
}

// HandleDisconnect вызывается ровно один раз на подключение, включая
// принудительные разрывы. Повторный уход уже отсутствующего участника — no-op.
func (r *Relay) HandleDisconnect(connID string) {
	var username string
	if c, ok := r.hub.Get(connID); ok {
		username = c.Identity().Username
	}

	roomID := r.hub.RoomOf(connID)
	r.hub.Remove(connID)
	if roomID == "" {
		return
	}

	remaining, removed, err := r.registry.Leave(roomID, connID)
	if err != nil || !removed {
		// комната уже удалена или участник уже снят — ничего не делаем
		return
	}

	left := NewMessage(TypeUserLeft, UserLeftPayload{ConnectionID: connID})
	for _, p := range remaining {
		r.hub.Send(p.ConnectionID, left)
	}

	r.writeLedger("leave", func(ctx context.Context) error {
		return r.ledger.RecordLeave(ctx, roomID, username)
	})
	if len(remaining) == 0 {
		r.writeLedger("session end", func(ctx context.Context) error {
			return r.ledger.RecordSessionEnd(ctx, roomID)
		})
		slog.Info("room closed, all users left", "room", roomID)
	}
	r.notifyAdmins()
}

// Kick уведомляет подключение о причине и рвёт транспорт; закрытие
// возвращает нас в обычный путь дисконнекта.
func (r *Relay) Kick(connID, reason string) {
	r.hub.Send(connID, NewMessage(TypeRoomKicked, KickedPayload{Reason: reason}))
	r.hub.CloseConn(connID)
	r.notifyAdmins()
}

// Terminate — административное закрытие комнаты. Не-админ получает
// ErrAdminRequired, состояние комнаты не меняется.
func (r *Relay) Terminate(roomID string, actor domain.Identity) error {
	if !actor.IsAdmin {
		return domain.ErrAdminRequired
	}

	parts, err := r.registry.Delete(roomID)
	if err != nil {
		return err
	}

	terminated := NewMessage(TypeRoomTerminated, struct{}{})
	for _, p := range parts {
		r.hub.Send(p.ConnectionID, terminated)
		r.hub.ClearRoom(p.ConnectionID)
		r.hub.CloseConn(p.ConnectionID)
	}

	r.writeLedger("session end", func(ctx context.Context) error {
		return r.ledger.RecordSessionEnd(ctx, roomID)
	})
	r.notifyAdmins()

	slog.Info("room terminated by admin", "room", roomID, "admin", actor.Username)
	return nil
}

// writeLedger — fire-and-forget запись в журнал: сигналинг никогда не ждёт
// и не падает из-за хранилища.
func (r *Relay) writeLedger(op string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Warn("ledger write failed", "op", op, "err", err)
		}
	}()
}

// notifyAdmins толкает админские подключения при каждом изменении состава
// комнат: дашборд перечитывает сессии, не дожидаясь поллинга.
func (r *Relay) notifyAdmins() {
	msg := NewMessage(TypeAdminUpdate, struct{}{})
	for _, c := range r.hub.Admins() {
		_ = c.Send(msg)
	}
}

func (r *Relay) sendError(c Conn, msg string) {
	_ = c.Send(NewMessage(TypeError, ErrorPayload{Message: msg}))
}

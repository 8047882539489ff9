package ws

import (
	"sync"

	"github.com/Askiater/speak-to-me/internal/domain"
)

type Conn interface {
	ID() string
	Identity() domain.Identity
	Send(msg Message) error
	Close() error
}

// Hub — шлюз подключений: отображение connectionID на живой транспорт
// плюс слабая обратная ссылка на комнату. Состояние комнат hub не мутирует —
// этим владеет реестр.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]string // connectionID -> roomID
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]string),
	}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	delete(h.rooms, connID)
}

func (h *Hub) Get(connID string) (Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[connID]
	return c, ok
}

func (h *Hub) SetRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; ok {
		h.rooms[connID] = roomID
	}
}

func (h *Hub) ClearRoom(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, connID)
}

func (h *Hub) RoomOf(connID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[connID]
}

// Admins возвращает подключения администраторов.
func (h *Hub) Admins() []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Conn
	for _, c := range h.conns {
		if c.Identity().IsAdmin {
			out = append(out, c)
		}
	}
	return out
}

// Send доставляет сообщение подключению. Неизвестный или уже закрытый
// connectionID — no-op: гонки с дисконнектом не должны ронять отправителя.
func (h *Hub) Send(connID string, msg Message) bool {
	c, ok := h.Get(connID)
	if !ok {
		return false
	}
	_ = c.Send(msg) // best-effort
	return true
}

// CloseConn принудительно рвёт транспорт. Повторное закрытие — no-op.
func (h *Hub) CloseConn(connID string) {
	if c, ok := h.Get(connID); ok {
		_ = c.Close()
	}
}

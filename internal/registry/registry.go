// Package registry хранит активные комнаты в памяти процесса.
// Все мутации одной комнаты сериализованы её собственным мьютексом;
// операции над разными комнатами не блокируют друг друга.
package registry

import (
	"sync"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"
)

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu   sync.Mutex
	dead bool // выставляется под mu перед удалением из map

	id              string
	creatorID       *int64
	creatorUsername string
	createdAt       time.Time
	lastActivityAt  time.Time
	participants    []domain.Participant
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

func (r *Registry) Create(roomID string, creator domain.Identity) (domain.Room, error) {
	now := time.Now()
	rm := &room{
		id:              roomID,
		creatorID:       creator.UserID,
		creatorUsername: creator.Username,
		createdAt:       now,
		lastActivityAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; ok {
		return domain.Room{}, domain.ErrRoomExists
	}
	r.rooms[roomID] = rm

	return rm.snapshot(), nil
}

func (r *Registry) Find(roomID string) (domain.Room, error) {
	rm, ok := r.lookup(roomID)
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.dead {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return rm.snapshot(), nil
}

// List возвращает снапшоты всех живых комнат.
func (r *Registry) List() []domain.Room {
	r.mu.RLock()
	all := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		all = append(all, rm)
	}
	r.mu.RUnlock()

	out := make([]domain.Room, 0, len(all))
	for _, rm := range all {
		rm.mu.Lock()
		if !rm.dead {
			out = append(out, rm.snapshot())
		}
		rm.mu.Unlock()
	}
	return out
}

// Join добавляет участника и возвращает снапшот комнаты после добавления.
// max <= 0 отключает лимит.
func (r *Registry) Join(roomID string, p domain.Participant, max int) (domain.Room, error) {
	for {
		rm, ok := r.lookup(roomID)
		if !ok {
			return domain.Room{}, domain.ErrRoomNotFound
		}

		rm.mu.Lock()
		if rm.dead {
			// комнату удалили между lookup и lock
			rm.mu.Unlock()
			continue
		}

		if max > 0 && len(rm.participants) >= max {
			rm.mu.Unlock()
			return domain.Room{}, domain.ErrRoomFull
		}

		rm.participants = append(rm.participants, p)
		rm.lastActivityAt = time.Now()
		snap := rm.snapshot()
		rm.mu.Unlock()

		return snap, nil
	}
}

// Leave убирает участника по connectionID. Повторный Leave — no-op
// (removed=false). Опустевшая комната удаляется немедленно.
func (r *Registry) Leave(roomID, connectionID string) (remaining []domain.Participant, removed bool, err error) {
	for {
		rm, ok := r.lookup(roomID)
		if !ok {
			return nil, false, domain.ErrRoomNotFound
		}

		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}

		idx := -1
		for i, p := range rm.participants {
			if p.ConnectionID == connectionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			rm.mu.Unlock()
			return nil, false, nil
		}

		rm.participants = append(rm.participants[:idx], rm.participants[idx+1:]...)
		rm.lastActivityAt = time.Now()

		if len(rm.participants) == 0 {
			rm.dead = true
			rm.mu.Unlock()
			r.remove(rm)
			return nil, true, nil
		}

		remaining = snapshotParticipants(rm.participants)
		rm.mu.Unlock()

		return remaining, true, nil
	}
}

// Delete удаляет комнату независимо от занятости и возвращает участников,
// которые в ней были на момент удаления.
func (r *Registry) Delete(roomID string) ([]domain.Participant, error) {
	for {
		rm, ok := r.lookup(roomID)
		if !ok {
			return nil, domain.ErrRoomNotFound
		}

		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}

		parts := snapshotParticipants(rm.participants)
		rm.dead = true
		rm.mu.Unlock()
		r.remove(rm)

		return parts, nil
	}
}

// Reap — одно решение sweep'а по одной комнате, в той же критической секции,
// что и живой трафик. Пустая комната удаляется; одинокий участник, чья комната
// простаивает дольше idle, возвращается для кика (комната уже удалена).
// Комнаты с двумя и более участниками не трогаются.
func (r *Registry) Reap(roomID string, now time.Time, idle time.Duration) (kicked *domain.Participant, deleted bool) {
	rm, ok := r.lookup(roomID)
	if !ok {
		return nil, false
	}

	rm.mu.Lock()
	if rm.dead {
		rm.mu.Unlock()
		return nil, false
	}

	switch n := len(rm.participants); {
	case n == 0:
		rm.dead = true
		rm.mu.Unlock()
		r.remove(rm)
		return nil, true

	case n == 1 && now.Sub(rm.lastActivityAt) > idle:
		p := rm.participants[0]
		rm.dead = true
		rm.mu.Unlock()
		r.remove(rm)
		return &p, true

	default:
		rm.mu.Unlock()
		return nil, false
	}
}

// --- internals ---

func (r *Registry) lookup(roomID string) (*room, bool) {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	return rm, ok
}

func (r *Registry) remove(rm *room) {
	r.mu.Lock()
	if cur, ok := r.rooms[rm.id]; ok && cur == rm {
		delete(r.rooms, rm.id)
	}
	r.mu.Unlock()
}

// вызывать под rm.mu
func (rm *room) snapshot() domain.Room {
	return domain.Room{
		ID:              rm.id,
		CreatorID:       rm.creatorID,
		CreatorUsername: rm.creatorUsername,
		Participants:    snapshotParticipants(rm.participants),
		CreatedAt:       rm.createdAt,
		LastActivityAt:  rm.lastActivityAt,
	}
}

func snapshotParticipants(ps []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(ps))
	copy(out, ps)
	return out
}

package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Askiater/speak-to-me/internal/domain"
	"github.com/Askiater/speak-to-me/internal/registry"

	"github.com/google/uuid"
)

// Ledger — внешний долговременный журнал сессий. Пишется и никогда
// не читается; ошибки записи логируются и не прерывают сигналинг.
type Ledger interface {
	RecordSessionStart(ctx context.Context, roomID string, creatorID *int64) error
	RecordJoin(ctx context.Context, roomID string, userID *int64, username string) error
	RecordLeave(ctx context.Context, roomID, username string) error
	RecordSessionEnd(ctx context.Context, roomID string) error
}

type RoomService struct {
	registry *registry.Registry
	ledger   Ledger
}

func NewRoomService(reg *registry.Registry, ledger Ledger) *RoomService {
	return &RoomService{registry: reg, ledger: ledger}
}

// CreateRoom создаёт комнату с неугадываемым id. Коллизия uuid на практике
// не случается, но реестр на неё всё равно ответит ErrRoomExists.
func (s *RoomService) CreateRoom(ctx context.Context, creator domain.Identity) (string, error) {
	roomID := uuid.NewString()
	if _, err := s.registry.Create(roomID, creator); err != nil {
		return "", err
	}

	if err := s.ledger.RecordSessionStart(ctx, roomID, creator.UserID); err != nil {
		slog.Warn("ledger session start failed", "room", roomID, "err", err)
	}

	slog.Info("room created", "room", roomID, "creator", creator.Username)
	return roomID, nil
}

func (s *RoomService) GetRoom(roomID string) (domain.Room, error) {
	return s.registry.Find(roomID)
}

// ListSessions — снапшот живых комнат для админской панели.
func (s *RoomService) ListSessions() []domain.Room {
	rooms := s.registry.List()
	// стабильный порядок: свежесозданные первыми
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepository пишет журнал сессий. Ядро сигналинга его только пишет,
// никогда не читает; все вызовы best-effort.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) RecordSessionStart(ctx context.Context, roomID string, creatorID *int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (room_id, creator_id) VALUES ($1, $2)`,
		roomID, creatorID)
	return err
}

func (r *LedgerRepository) RecordJoin(ctx context.Context, roomID string, userID *int64, username string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO session_participants (session_id, user_id, username)
		SELECT id, $2, $3 FROM sessions WHERE room_id = $1
	`, roomID, userID, username)
	return err
}

func (r *LedgerRepository) RecordLeave(ctx context.Context, roomID, username string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE session_participants SET left_at = NOW()
		WHERE session_id = (SELECT id FROM sessions WHERE room_id = $1)
		  AND username = $2 AND left_at IS NULL
	`, roomID, username)
	return err
}

func (r *LedgerRepository) RecordSessionEnd(ctx context.Context, roomID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sessions SET ended_at = NOW() WHERE room_id = $1 AND ended_at IS NULL`,
		roomID)
	return err
}

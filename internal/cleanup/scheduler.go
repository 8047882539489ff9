// Package cleanup возвращает брошенные комнаты: клиенты, упавшие без
// дисконнекта, никогда не пришлют явный leave.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/Askiater/speak-to-me/internal/registry"
	"github.com/Askiater/speak-to-me/internal/service"
)

// Kicker — путь принудительного отключения через релей.
type Kicker interface {
	Kick(connID, reason string)
}

type Scheduler struct {
	registry *registry.Registry
	kicker   Kicker
	ledger   service.Ledger

	interval    time.Duration
	idleTimeout time.Duration
}

func NewScheduler(reg *registry.Registry, kicker Kicker, ledger service.Ledger, interval, idleTimeout time.Duration) *Scheduler {
	return &Scheduler{
		registry:    reg,
		kicker:      kicker,
		ledger:      ledger,
		interval:    interval,
		idleTimeout: idleTimeout,
	}
}

// Run блокирует до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep проходит по всем комнатам; каждое решение принимается в той же
// пер-комнатной критической секции, что и живой трафик (Registry.Reap).
func (s *Scheduler) sweep(now time.Time) {
	for _, room := range s.registry.List() {
		kicked, deleted := s.registry.Reap(room.ID, now, s.idleTimeout)
		if !deleted {
			continue
		}

		if kicked != nil {
			s.kicker.Kick(kicked.ConnectionID, "timeout")
			slog.Info("kicked idle lone participant", "room", room.ID, "conn", kicked.ConnectionID)
		} else {
			slog.Info("removed empty room", "room", room.ID)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.ledger.RecordSessionEnd(ctx, room.ID); err != nil {
			slog.Warn("ledger write failed", "op", "session end", "room", room.ID, "err", err)
		}
		cancel()
	}
}

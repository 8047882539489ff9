package domain

import "time"

// Participant — членство одного живого подключения в комнате.
// ConnectionID уникален на время жизни подключения и не переиспользуется.
type Participant struct {
	ConnectionID string
	UserID       *int64
	Username     string
	JoinedAt     time.Time
}

// Room — снапшот состояния комнаты из реестра. Комнаты эфемерны:
// живут только в памяти процесса и исчезают вместе с последним участником.
type Room struct {
	ID              string
	CreatorID       *int64
	CreatorUsername string
	Participants    []Participant // insertion order
	CreatedAt       time.Time
	LastActivityAt  time.Time
}

package domain

import "time"

// Identity — результат резолва credential'а подключения.
// UserID == nil означает гостя.
type Identity struct {
	UserID   *int64
	Username string
	IsAdmin  bool
}

func Guest() Identity {
	return Identity{Username: "Guest"}
}

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

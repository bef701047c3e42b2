package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the database.
type User struct {
	ID             uuid.UUID `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	IsAdmin        bool      `db:"is_admin"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ChatSession represents one visitor conversation. Identifiers are
// assigned by the database in insertion order (BIGSERIAL) and the row
// is never mutated after creation.
type ChatSession struct {
	ID          int64     `db:"id"`
	VisitorName string    `db:"visitor_name"`
	CreatedAt   time.Time `db:"created_at"`
}

// ChatMessage is one immutable turn in a conversation. Every message
// belongs to exactly one session and is removed when that session is
// deleted (FK cascade).
type ChatMessage struct {
	ID        int64       `db:"id"`
	SessionID int64       `db:"session_id"`
	Role      MessageRole `db:"role"`
	Content   string      `db:"content"`
	CreatedAt time.Time   `db:"created_at"`
}

// ChatSessionSummary is the aggregated row returned by the admin
// listing: a session joined against its message count and the
// timestamp of its most recent message. LastMessageAt is nil for
// sessions with no messages yet.
type ChatSessionSummary struct {
	Session       ChatSession
	MessageCount  int64
	LastMessageAt *time.Time
}

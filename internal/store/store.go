package store

import (
	"context"
	"errors"

	db_models "kaitlus-backend/internal/models"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint
// (e.g. username or email already taken).
var ErrDuplicate = errors.New("record already exists")

// ErrSessionNotFound is returned when a message insert references a
// chat session that does not exist (FK violation surfaced by the
// database's referential-integrity check).
var ErrSessionNotFound = errors.New("chat session not found")

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*db_models.User, error)
	CreateUser(ctx context.Context, user *db_models.User) error

	// Chat session operations
	CreateChatSession(ctx context.Context, visitorName string) (*db_models.ChatSession, error)
	GetChatSessionByID(ctx context.Context, id int64) (*db_models.ChatSession, error)
	ListChatSessions(ctx context.Context) ([]db_models.ChatSessionSummary, error)

	// Chat message operations
	CreateChatMessage(ctx context.Context, sessionID int64, role db_models.MessageRole, content string) (*db_models.ChatMessage, error)
	ListChatMessages(ctx context.Context, sessionID int64) ([]db_models.ChatMessage, error)
}

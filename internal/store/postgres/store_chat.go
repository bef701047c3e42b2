package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	db_models "kaitlus-backend/internal/models"
	"kaitlus-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Chat Session Methods ---

const createChatSession = `-- name: CreateChatSession :one
INSERT INTO chat_sessions (visitor_name)
VALUES ($1)
RETURNING id, visitor_name, created_at;
`

// CreateChatSession inserts a new conversation row and returns it with
// its database-assigned identifier. The insert is a single atomic
// statement; concurrent callers never observe a partial row.
func (s *PostgresStore) CreateChatSession(ctx context.Context, visitorName string) (*db_models.ChatSession, error) {
	row := s.db.QueryRow(ctx, createChatSession, visitorName)

	var session db_models.ChatSession
	err := row.Scan(
		&session.ID,
		&session.VisitorName,
		&session.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateChatSession: insert failed for visitor %q: %v", visitorName, err)
		return nil, fmt.Errorf("database error creating chat session: %w", err)
	}

	log.Printf("[PostgresStore] CreateChatSession: Created session %d for visitor %q", session.ID, session.VisitorName)
	return &session, nil
}

const getChatSessionByID = `-- name: GetChatSessionByID :one
SELECT id, visitor_name, created_at
FROM chat_sessions
WHERE id = $1;
`

// GetChatSessionByID retrieves one session's metadata.
// Returns store.ErrNotFound if the session does not exist.
func (s *PostgresStore) GetChatSessionByID(ctx context.Context, id int64) (*db_models.ChatSession, error) {
	row := s.db.QueryRow(ctx, getChatSessionByID, id)

	var session db_models.ChatSession
	err := row.Scan(
		&session.ID,
		&session.VisitorName,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning chat session: %w", err)
	}

	return &session, nil
}

const listChatSessions = `-- name: ListChatSessions :many
SELECT s.id, s.visitor_name, s.created_at,
       COUNT(m.id) AS message_count,
       MAX(m.created_at) AS last_message_at
FROM chat_sessions s
LEFT JOIN chat_messages m ON m.session_id = s.id
GROUP BY s.id, s.visitor_name, s.created_at
ORDER BY s.created_at DESC;
`

// ListChatSessions returns every session with its message count and
// last-activity timestamp, newest session first. Sessions with no
// messages appear with a count of 0 and a nil timestamp.
func (s *PostgresStore) ListChatSessions(ctx context.Context) ([]db_models.ChatSessionSummary, error) {
	rows, err := s.db.Query(ctx, listChatSessions)
	if err != nil {
		return nil, fmt.Errorf("error querying chat sessions: %w", err)
	}
	defer rows.Close()

	var items []db_models.ChatSessionSummary
	for rows.Next() {
		var i db_models.ChatSessionSummary
		if err := rows.Scan(
			&i.Session.ID,
			&i.Session.VisitorName,
			&i.Session.CreatedAt,
			&i.MessageCount,
			&i.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning chat session row: %w", err)
		}
		items = append(items, i)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat session rows: %w", err)
	}

	return items, nil
}

// --- Chat Message Methods ---

const createChatMessage = `-- name: CreateChatMessage :one
INSERT INTO chat_messages (session_id, role, content)
VALUES ($1, $2, $3)
RETURNING id, session_id, role, content, created_at;
`

// CreateChatMessage appends one immutable message to a session's
// transcript. Returns store.ErrSessionNotFound when the session id
// does not reference an existing session.
func (s *PostgresStore) CreateChatMessage(ctx context.Context, sessionID int64, role db_models.MessageRole, content string) (*db_models.ChatMessage, error) {
	row := s.db.QueryRow(ctx, createChatMessage, sessionID, role, content)

	var msg db_models.ChatMessage
	err := row.Scan(
		&msg.ID,
		&msg.SessionID,
		&msg.Role,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			log.Printf("[PostgresStore] CreateChatMessage: session %d does not exist", sessionID)
			return nil, store.ErrSessionNotFound
		}
		log.Printf("ERROR [PostgresStore] CreateChatMessage: insert failed for session %d: %v", sessionID, err)
		return nil, fmt.Errorf("database error creating chat message: %w", err)
	}

	return &msg, nil
}

const listChatMessages = `-- name: ListChatMessages :many
SELECT id, session_id, role, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC;
`

// ListChatMessages returns a session's transcript oldest-first.
// Creation-time ties are broken by id, which is monotonic in insertion
// order, so the result is a total order.
func (s *PostgresStore) ListChatMessages(ctx context.Context, sessionID int64) ([]db_models.ChatMessage, error) {
	rows, err := s.db.Query(ctx, listChatMessages, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []db_models.ChatMessage
	for rows.Next() {
		var m db_models.ChatMessage
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.Role,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning chat message row: %w", err)
		}
		msgs = append(msgs, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	return msgs, nil
}

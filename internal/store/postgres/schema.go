package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxPoolConns bounds in-flight database connections. Callers needing
// a connection beyond this block on Acquire rather than failing; the
// wait queue is unbounded, which is a resource-exhaustion risk under
// sustained overload, not a correctness issue at this system's
// request rates.
const maxPoolConns = 10

// NewPool creates the application's connection pool. The database
// named by databaseURL must already exist (Postgres has no
// CREATE DATABASE IF NOT EXISTS; provisioning is the deployment's
// job). The pool is pinged so a bad URL fails here, not on the first
// request.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	poolCfg.MaxConns = maxPoolConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Schema statements are all IF NOT EXISTS so EnsureSchema is safe to
// run on every process start and never touches existing data.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_sessions (
		id BIGSERIAL PRIMARY KEY,
		visitor_name VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		role VARCHAR(16) NOT NULL CHECK (role IN ('human', 'assistant')),
		content TEXT NOT NULL CHECK (content <> ''),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id
		ON chat_messages (session_id, created_at, id)`,
}

// EnsureSchema idempotently creates the tables the application needs.
// A failure here is reported to the caller, which may choose to keep
// running without persistence rather than abort.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			log.Printf("ERROR [PostgresStore] EnsureSchema: statement failed: %v", err)
			return fmt.Errorf("schema creation failed: %w", err)
		}
	}
	log.Println("[PostgresStore] EnsureSchema: database tables ready")
	return nil
}

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
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

// PostgreSQL error codes we map to typed sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*db_models.User, error) {
	query := `
		SELECT id, username, email, hashed_password, is_admin, created_at, updated_at
		FROM users
		WHERE email = $1`

	user := &db_models.User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetUserByEmail: Failed to query/scan user for email %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user record into the database.
// Returns store.ErrDuplicate if the username or email is already taken.
func (s *PostgresStore) CreateUser(ctx context.Context, user *db_models.User) error {
	query := `
		INSERT INTO users (id, username, email, hashed_password, is_admin)
		VALUES ($1, $2, $3, $4, $5)`
	// created_at and updated_at have database defaults (NOW())

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.IsAdmin,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			log.Printf("[PostgresStore] CreateUser: unique violation for %s: %s", user.Email, pgErr.ConstraintName)
			return store.ErrDuplicate
		}
		log.Printf("ERROR [PostgresStore] CreateUser: Failed to execute insert for email %s: %v", user.Email, err)
		return fmt.Errorf("database error creating user: %w", err)
	}

	log.Printf("[PostgresStore] CreateUser: Successfully inserted user ID %s for email %s", user.ID, user.Email)
	return nil
}

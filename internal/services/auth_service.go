package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kaitlus-backend/internal/auth"
	"kaitlus-backend/internal/config"
	"kaitlus-backend/internal/models"
	"kaitlus-backend/internal/store"

	"github.com/google/uuid"
)

// Custom errors for auth service
var (
	ErrUserAlreadyExists  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrHashingPassword    = errors.New("failed to hash password")
	ErrCreatingToken      = errors.New("failed to create access token")
	ErrValidation         = errors.New("input validation failed") // Generic validation error, shared by all services
)

const minPasswordLength = 6

type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(s store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: s,
		cfg:   cfg,
	}
}

// Register creates a new account. Accounts are created without the
// admin flag; admins are promoted directly in the database.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmPassword string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if password != confirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	// Check if the email is taken before hashing. The unique constraints
	// on users still catch races and duplicate usernames at insert time.
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Error checking user existence for %s: %v", email, err)
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Error hashing password for %s: %v", email, err)
		return nil, ErrHashingPassword
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		IsAdmin:        false,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		log.Printf("Error creating user for %s: %v", email, err)
		return nil, fmt.Errorf("creating user failed: %w", err)
	}

	log.Printf("Successfully registered user %s (ID: %s)", email, user.ID)
	return user, nil
}

// Login verifies user credentials and returns an access token and user info.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials // Basic check before hitting DB
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials // Don't reveal if user exists or password is wrong
		}
		log.Printf("Error retrieving user %s during login: %v", email, err)
		return "", nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(user.ID, user.IsAdmin, s.cfg.JWTSecret, s.cfg.TokenExpiration)
	if err != nil {
		log.Printf("Error generating JWT for user %s (ID: %s): %v", email, user.ID, err)
		return "", nil, ErrCreatingToken
	}

	log.Printf("Successfully logged in user %s (ID: %s)", email, user.ID)
	return token, user, nil
}

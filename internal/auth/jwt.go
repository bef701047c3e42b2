package auth

import (
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// --- Context Keys ---

// contextKey is a custom type used for context keys to avoid collisions.
type contextKey string

const (
	UserIDKey  contextKey = "userID"
	IsAdminKey contextKey = "isAdmin"
)

// --- JWT Claims ---

// CustomClaims includes standard JWT claims plus our custom ones.
// Match this with the claims struct in api/middleware.go
type CustomClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

// NewAccessToken generates a new JWT access token.
func NewAccessToken(userID uuid.UUID, isAdmin bool, jwtSecret string, expiration time.Duration) (string, error) {
	claims := CustomClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "kaitlus-backend",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT token for UserID %s: %v", userID, err)
		return "", err
	}

	return signedToken, nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redmonkez12/accounts-api/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the identity embedded in a session token.
type Claims struct {
	UserID   int64
	Username string
	Email    string
}

// TokenClaims represents the verified contents of a session token.
type TokenClaims struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(claims Claims) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
	// TTL is the lifetime of every token the service issues.
	TTL() time.Duration
	// Format names the token encoding ("jwt" or "paseto").
	Format() string
}

// UserStore is the slice of the user workflow the auth service depends on.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	Create(ctx context.Context, in user.ProfileInput) (int64, error)
}

// PasswordHasher hashes and checks passwords. *password.Hasher satisfies it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

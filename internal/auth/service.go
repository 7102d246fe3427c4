package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redmonkez12/accounts-api/internal/logging"
	"github.com/redmonkez12/accounts-api/internal/metrics"
	"github.com/redmonkez12/accounts-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentifierRequired = errors.New("username or email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// dummyPassword is hashed once so sign-ins for unknown identifiers still pay
// for a bcrypt comparison.
const dummyPassword = "accounts-api-dummy-password"

// TokenType is the scheme clients put in front of the token.
const TokenType = "Bearer"

// SignInResult is what a successful sign-in hands back to the client.
type SignInResult struct {
	Token     string
	TokenType string
	ExpiresIn int64 // seconds
}

// Service handles authentication business logic
type Service struct {
	users       UserStore
	passwords   PasswordHasher
	tokens      TokenService
	logger      *logging.Logger
	dummyDigest string
}

func NewService(users UserStore, passwords PasswordHasher, tokens TokenService, logger *logging.Logger) (*Service, error) {
	dummyDigest, err := passwords.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Service{
		users:       users,
		passwords:   passwords,
		tokens:      tokens,
		logger:      logger,
		dummyDigest: dummyDigest,
	}, nil
}

// Register creates an account. It does not sign the user in.
func (s *Service) Register(ctx context.Context, in user.ProfileInput) (int64, error) {
	id, err := s.users.Create(ctx, in)
	metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SignIn verifies identifier (username or email) and password and issues a
// session token. Unknown identifiers and wrong passwords both yield
// ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (result *SignInResult, err error) {
	defer func() {
		metrics.AuthSigninsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	existing, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if existing == nil {
		s.passwords.Verify(password, s.dummyDigest)
		return nil, ErrInvalidCredentials
	}

	if !s.passwords.Verify(password, existing.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(Claims{
		UserID:   existing.ID,
		Username: existing.Username,
		Email:    existing.Email,
	})
	metrics.TokensIssuedTotal.WithLabelValues(s.tokens.Format(), metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	s.logger.Info("user signed in", "user_id", existing.ID)

	return &SignInResult{
		Token:     token,
		TokenType: TokenType,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

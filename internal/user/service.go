package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redmonkez12/accounts-api/internal/logging"
)

// Store is the persistence contract the service needs. *Repository satisfies it.
type Store interface {
	Create(ctx context.Context, u *User) (int64, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}

// PasswordHasher turns a plaintext password into a storable digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// Service handles user business logic
type Service struct {
	repo   Store
	hasher PasswordHasher
	cache  Cache
	logger *logging.Logger
}

// NewService wires the user workflow. A nil cache disables caching.
func NewService(repo Store, hasher PasswordHasher, cache Cache, logger *logging.Logger) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
		logger: logger,
	}
}

// Create validates in, hashes the password and stores the user with its
// profile in one transaction.
func (s *Service) Create(ctx context.Context, in ProfileInput) (int64, error) {
	in = Normalize(in)
	if err := Validate(in); err != nil {
		return 0, err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, in.toUser(passwordHash))
	if err != nil {
		return 0, err
	}

	s.logger.Info("user created", "user_id", id)
	return id, nil
}

// FindByIdentifier returns the user whose username or email equals
// identifier, or nil when there is none. The result carries the password hash.
func (s *Service) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return s.repo.FindByIdentifier(ctx, strings.TrimSpace(identifier))
}

// Get returns the profile for id without the password hash.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("profile cache read failed", "user_id", id, "error", err.Error())
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""

	if err := s.cache.Set(ctx, u); err != nil {
		s.logger.Warn("profile cache write failed", "user_id", id, "error", err.Error())
	}

	return u, nil
}

// Update replaces the account and profile of id. The new password is hashed
// before it is stored.
func (s *Service) Update(ctx context.Context, id int64, in ProfileInput) error {
	in = Normalize(in)
	if err := Validate(in); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u := in.toUser(passwordHash)
	u.ID = id

	// Invalidate on both sides of the write. A reader that loaded the old row
	// before the first invalidation can still repopulate it after the second;
	// that entry lives at most CACHE_TTL.
	s.invalidate(ctx, id)
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("user updated", "user_id", id)
	return nil
}

// Delete removes the user and its profile rows, dropping any cached profile.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.invalidate(ctx, id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("profile cache invalidation failed", "user_id", id, "error", err.Error())
	}
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/accounts-api/internal/database"
)

const (
	uniqueViolation    = "23505"
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

var (
	personalColumns = []string{"first_name", "last_name", "age", "date_of_birth", "phone", "gender"}
	addressColumns  = []string{"street", "city", "state", "postal_code", "country"}
	socialColumns   = []string{"profile_picture", "bio", "website", "occupation", "company", "skill", "language"}
)

// Repository handles user data persistence. Writes spanning several tables
// run in a single transaction.
type Repository struct {
	db      *bun.DB
	timeout time.Duration
}

// NewRepository creates a repository whose operations each run under timeout.
func NewRepository(db *bun.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Create inserts the user row and its extension rows atomically and returns
// the new user's id.
func (r *Repository) Create(ctx context.Context, u *User) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	dbUser := &database.User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(dbUser).
			Returning("id").
			Exec(ctx); err != nil {
			return err
		}

		personal, err := toDBPersonal(dbUser.ID, u.Personal)
		if err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(personal).Returning("NULL").Exec(ctx); err != nil {
			return fmt.Errorf("insert personal_info: %w", err)
		}

		if u.Address != nil {
			if _, err := tx.NewInsert().Model(toDBAddress(dbUser.ID, u.Address)).Returning("NULL").Exec(ctx); err != nil {
				return fmt.Errorf("insert address: %w", err)
			}
		}

		if u.Social != nil {
			if _, err := tx.NewInsert().Model(toDBSocial(dbUser.ID, u.Social)).Returning("NULL").Exec(ctx); err != nil {
				return fmt.Errorf("insert social_info: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if dup := classifyConstraint(err); dup != nil {
			return 0, dup
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return dbUser.ID, nil
}

// FindByIdentifier looks a user up by username or email. It returns nil, nil
// when no user matches.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("username = ?", identifier).
		WhereOr("email = ?", strings.ToLower(identifier)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by identifier: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user and its profile extensions. All four reads share
// one read-only snapshot, so a concurrent delete is seen either fully or not
// at all.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u *User
	opts := &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	err := r.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		dbUser := new(database.User)
		if err := tx.NewSelect().Model(dbUser).Where("id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get user by id: %w", err)
		}
		u = mapDBUserToModel(dbUser)

		personal := new(database.PersonalInfo)
		found, err := selectExtension(ctx, tx, personal, id)
		if err != nil {
			return fmt.Errorf("failed to get personal_info: %w", err)
		}
		if !found {
			return fmt.Errorf("user %d: %w", id, ErrIncompleteProfile)
		}
		u.Personal = mapDBPersonal(personal)

		address := new(database.Address)
		found, err = selectExtension(ctx, tx, address, id)
		if err != nil {
			return fmt.Errorf("failed to get address: %w", err)
		}
		if found {
			u.Address = mapDBAddress(address)
		}

		social := new(database.SocialInfo)
		found, err = selectExtension(ctx, tx, social, id)
		if err != nil {
			return fmt.Errorf("failed to get social_info: %w", err)
		}
		if found {
			u.Social = mapDBSocial(social)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}

func selectExtension(ctx context.Context, db bun.IDB, model any, userID int64) (bool, error) {
	err := db.NewSelect().
		Model(model).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update replaces the user row and its extensions. Extensions absent from u
// are removed.
func (r *Repository) Update(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	personal, err := toDBPersonal(u.ID, u.Personal)
	if err != nil {
		return err
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("username = ?", u.Username).
			Set("email = ?", u.Email).
			Set("password_hash = ?", u.PasswordHash).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", u.ID).
			Exec(ctx)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}

		if err := upsert(ctx, tx, personal, personalColumns); err != nil {
			return fmt.Errorf("upsert personal_info: %w", err)
		}

		if u.Address != nil {
			err = upsert(ctx, tx, toDBAddress(u.ID, u.Address), addressColumns)
		} else {
			err = deleteExtension(ctx, tx, (*database.Address)(nil), u.ID)
		}
		if err != nil {
			return fmt.Errorf("write address: %w", err)
		}

		if u.Social != nil {
			err = upsert(ctx, tx, toDBSocial(u.ID, u.Social), socialColumns)
		} else {
			err = deleteExtension(ctx, tx, (*database.SocialInfo)(nil), u.ID)
		}
		if err != nil {
			return fmt.Errorf("write social_info: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		if dup := classifyConstraint(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func upsert(ctx context.Context, tx bun.Tx, model any, columns []string) error {
	q := tx.NewInsert().
		Model(model).
		On("CONFLICT (user_id) DO UPDATE")
	for _, c := range columns {
		q = q.Set(c + " = EXCLUDED." + c)
	}
	_, err := q.Returning("NULL").Exec(ctx)
	return err
}

func deleteExtension(ctx context.Context, tx bun.Tx, model any, userID int64) error {
	_, err := tx.NewDelete().
		Model(model).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

// Delete removes the user. Extension rows go with it through ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// classifyConstraint maps a unique violation on users to its domain error,
// or returns nil.
func classifyConstraint(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case usernameConstraint:
		return ErrDuplicateUsername
	case emailConstraint:
		return ErrDuplicateEmail
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Username:     dbu.Username,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}

func toDBPersonal(userID int64, p PersonalInfo) (*database.PersonalInfo, error) {
	m := &database.PersonalInfo{
		UserID:    userID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Age:       p.Age,
		Phone:     p.Phone,
		Gender:    p.Gender,
	}
	if p.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, p.DateOfBirth)
		if err != nil {
			return nil, invalid("date_of_birth", "date of birth must be formatted YYYY-MM-DD")
		}
		m.DateOfBirth = &dob
	}
	return m, nil
}

func mapDBPersonal(m *database.PersonalInfo) PersonalInfo {
	p := PersonalInfo{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Age:       m.Age,
		Phone:     m.Phone,
		Gender:    m.Gender,
	}
	if m.DateOfBirth != nil {
		p.DateOfBirth = m.DateOfBirth.Format(dateOfBirthLayout)
	}
	return p
}

func toDBAddress(userID int64, a *Address) *database.Address {
	return &database.Address{
		UserID:     userID,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func mapDBAddress(m *database.Address) *Address {
	return &Address{
		Street:     m.Street,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
	}
}

func toDBSocial(userID int64, s *SocialInfo) *database.SocialInfo {
	return &database.SocialInfo{
		UserID:         userID,
		ProfilePicture: s.ProfilePicture,
		Bio:            s.Bio,
		Website:        s.Website,
		Occupation:     s.Occupation,
		Company:        s.Company,
		Skill:          s.Skill,
		Language:       s.Language,
	}
}

func mapDBSocial(m *database.SocialInfo) *SocialInfo {
	return &SocialInfo{
		ProfilePicture: m.ProfilePicture,
		Bio:            m.Bio,
		Website:        m.Website,
		Occupation:     m.Occupation,
		Company:        m.Company,
		Skill:          m.Skill,
		Language:       m.Language,
	}
}

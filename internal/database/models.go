package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the bun model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// PersonalInfo is mandatory for every user and created with it.
type PersonalInfo struct {
	bun.BaseModel `bun:"table:personal_info,alias:pi"`

	UserID      int64      `bun:"user_id,pk"`
	FirstName   string     `bun:"first_name,notnull"`
	LastName    string     `bun:"last_name,notnull"`
	Age         *int       `bun:"age"`
	DateOfBirth *time.Time `bun:"date_of_birth,type:date"`
	Phone       string     `bun:"phone,nullzero"`
	Gender      string     `bun:"gender,nullzero"`
}

type Address struct {
	bun.BaseModel `bun:"table:address,alias:a"`

	UserID     int64  `bun:"user_id,pk"`
	Street     string `bun:"street,nullzero"`
	City       string `bun:"city,nullzero"`
	State      string `bun:"state,nullzero"`
	PostalCode string `bun:"postal_code,nullzero"`
	Country    string `bun:"country,nullzero"`
}

type SocialInfo struct {
	bun.BaseModel `bun:"table:social_info,alias:si"`

	UserID         int64  `bun:"user_id,pk"`
	ProfilePicture string `bun:"profile_picture,nullzero"`
	Bio            string `bun:"bio,nullzero"`
	Website        string `bun:"website,nullzero"`
	Occupation     string `bun:"occupation,nullzero"`
	Company        string `bun:"company,nullzero"`
	Skill          string `bun:"skill,nullzero"`
	Language       string `bun:"language,nullzero"`
}

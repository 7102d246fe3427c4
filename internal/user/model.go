package user

import (
	"time"
)

// User is an account together with its profile extensions.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose password hash in JSON
	Personal     PersonalInfo `json:"personal_info"`
	Address      *Address     `json:"address,omitempty"`
	Social       *SocialInfo  `json:"social_info,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Age         *int   `json:"age,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Phone       string `json:"phone,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type SocialInfo struct {
	ProfilePicture string `json:"profile_picture,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Website        string `json:"website,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
	Company        string `json:"company,omitempty"`
	Skill          string `json:"skill,omitempty"`
	Language       string `json:"language,omitempty"`
}

// ProfileInput is the client-supplied account data for create and full update.
type ProfileInput struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Age         *int        `json:"age,omitempty"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	Social      *SocialInfo `json:"social_info,omitempty"`
}

// toUser builds the persisted shape of in. The caller supplies the digest.
func (in ProfileInput) toUser(passwordHash string) *User {
	return &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Personal: PersonalInfo{
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Age:         in.Age,
			DateOfBirth: in.DateOfBirth,
			Phone:       in.Phone,
			Gender:      in.Gender,
		},
		Address: in.Address,
		Social:  in.Social,
	}
}

package user

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 10
	MaxNameLength     = 100
	MinPasswordLength = 8
	MaxPasswordLength = 72
	maxPhoneLength    = 20
	maxAge            = 150
	dateOfBirthLayout = "2006-01-02"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	genders         = map[string]bool{"Male": true, "Female": true, "Other": true}
)

// Normalize trims surrounding whitespace and lowercases the email. Passwords
// are left untouched.
func Normalize(in ProfileInput) ProfileInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.TrimSpace(in.Gender)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	return in
}

// Validate checks in and returns the first failure as a *ValidationError.
// Required fields are checked in a fixed order so the reported field is
// deterministic.
func Validate(in ProfileInput) error {
	switch {
	case in.FirstName == "":
		return invalid("first_name", "first name is required")
	case in.LastName == "":
		return invalid("last_name", "last name is required")
	case in.Username == "":
		return invalid("username", "username is required")
	case in.Email == "":
		return invalid("email", "email is required")
	case !emailPattern.MatchString(in.Email):
		return invalid("email", "email format is invalid")
	case in.Password == "":
		return invalid("password", "password is required")
	case utf8.RuneCountInString(in.Password) < MinPasswordLength:
		return invalid("password", "password must be at least 8 characters")
	}

	switch {
	case utf8.RuneCountInString(in.Username) > MaxUsernameLength:
		return invalid("username", "username must be at most 10 characters")
	case !usernamePattern.MatchString(in.Username):
		return invalid("username", "username may only contain letters, digits, '.', '_' and '-'")
	case utf8.RuneCountInString(in.FirstName) > MaxNameLength:
		return invalid("first_name", "first name must be at most 100 characters")
	case utf8.RuneCountInString(in.LastName) > MaxNameLength:
		return invalid("last_name", "last name must be at most 100 characters")
	case len(in.Password) > MaxPasswordLength:
		return invalid("password", "password must be at most 72 bytes")
	}

	return validateOptional(in)
}

func validateOptional(in ProfileInput) error {
	if in.Age != nil && (*in.Age < 0 || *in.Age > maxAge) {
		return invalid("age", "age must be between 0 and 150")
	}
	if in.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, in.DateOfBirth)
		if err != nil {
			return invalid("date_of_birth", "date of birth must be formatted YYYY-MM-DD")
		}
		if dob.After(time.Now()) {
			return invalid("date_of_birth", "date of birth cannot be in the future")
		}
	}
	if utf8.RuneCountInString(in.Phone) > maxPhoneLength {
		return invalid("phone", "phone must be at most 20 characters")
	}
	if in.Gender != "" && !genders[in.Gender] {
		return invalid("gender", "gender must be one of Male, Female, Other")
	}
	return nil
}

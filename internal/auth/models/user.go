package models

import (
	"net/mail"
	"strings"
	"time"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/email"
)

const minPasswordLen = 8

// User is a storefront account. PasswordHash is a bcrypt hash and never leaves
// the auth service.
type User struct {
	ID           id.UserID
	Email        string
	FullName     string
	Role         id.Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID.String(),
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role.String(),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize lowercases and trims the email.
func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}
	return nil
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" && r.Email != "" {
		r.FullName = email.DisplayName(r.Email)
	}
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "email is invalid")
	}
	if len(r.Password) < minPasswordLen {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	return nil
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	User        Profile       `json:"user"`
	AccessToken string        `json:"accessToken"`
	ExpiresIn   time.Duration `json:"-"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

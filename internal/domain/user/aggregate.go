// Package user holds the identity collaborator of the access-control
// subsystem: an account with a role that the resolver consults.
package user

import (
	"fmt"
	"strings"
	"time"

	vo "bizdesk/internal/domain/user/value_objects"
	"bizdesk/internal/shared/authorization"
)

// User is the account aggregate root.
type User struct {
	id           uint
	email        *vo.Email
	name         string
	passwordHash string
	role         authorization.UserRole
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates an active account. An invalid role is rejected rather than
// downgraded so seeds cannot silently lose privileges.
func NewUser(email *vo.Email, name string, role authorization.UserRole) (*User, error) {
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	now := time.Now().UTC()
	return &User{
		email:     email,
		name:      strings.TrimSpace(name),
		role:      role,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUser rebuilds a user from persistence.
func ReconstructUser(
	id uint,
	email *vo.Email,
	name, passwordHash string,
	role authorization.UserRole,
	isActive bool,
	createdAt, updatedAt time.Time,
) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}

	return &User{
		id:           id,
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		role:         role,
		isActive:     isActive,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (u *User) ID() uint                     { return u.id }
func (u *User) Email() *vo.Email             { return u.email }
func (u *User) Name() string                 { return u.name }
func (u *User) PasswordHash() string         { return u.passwordHash }
func (u *User) Role() authorization.UserRole { return u.role }
func (u *User) IsActive() bool               { return u.isActive }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.passwordHash != ""
}

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

// SetPassword stores a new hash computed by hasher.
func (u *User) SetPassword(password string, hasher PasswordHasher) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	u.updatedAt = time.Now().UTC()
	return nil
}

// VerifyPassword checks password against the stored hash.
func (u *User) VerifyPassword(password string, hasher PasswordHasher) error {
	if !u.HasPassword() {
		return fmt.Errorf("password login is not enabled for this account")
	}
	return hasher.Verify(password, u.passwordHash)
}

func (u *User) ChangeRole(role authorization.UserRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	u.role = role
	u.updatedAt = time.Now().UTC()
	return nil
}

func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now().UTC()
}

// MinPasswordLength is the shortest password SetPassword accepts.
const MinPasswordLength = 8

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePetugas Role = "petugas" // teller
	RoleNasabah Role = "nasabah" // customer
)

var (
	ErrInvalidEmail  = shared.NewError(shared.CategoryValidation, "email is invalid")
	ErrInvalidRole   = shared.NewError(shared.CategoryValidation, "role is invalid")
	ErrEmptyFullName = shared.NewError(shared.CategoryValidation, "full name cannot be empty")
	ErrUserInactive  = shared.NewError(shared.CategoryAuthorization, "user is deactivated")
)

var validate = validator.New()

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePetugas || r == RoleNasabah
}

// IsStaff reports whether r may operate on other users' accounts.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RolePetugas
}

// User is the owner of a login identity. Deactivation flips IsActive; users are never deleted.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates an active user.
func NewUser(email, fullName, phone string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrEmptyFullName
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		FullName:  strings.TrimSpace(fullName),
		Phone:     phone,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

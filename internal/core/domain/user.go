package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateEmail reports a unique-constraint violation on users.email.
// Repositories return it so the service layer can answer with a conflict
// instead of a generic failure when two registrations race.
var ErrDuplicateEmail = errors.New("email already registered")

// Role distinguishes operator accounts.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// User is an operator account. Admins own a wallet and issue QR codes;
// superadmins create admins.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Role         Role       `json:"role"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	CompanyName  string     `json:"company_name,omitempty"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"` // superadmin who created this admin
	CreatedAt    time.Time  `json:"created_at"`
}

// IsSuperAdmin reports whether the user holds the elevated role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

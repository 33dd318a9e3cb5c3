package domain

import (
	"strings"
	"time"
)

// User is the full identity record as held by the credential store.
// It carries the password hash and must not cross the application boundary;
// callers receive PublicUser via Public().
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsAdmin      bool
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the password-free view of a User.
type PublicUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	IsAdmin   bool
	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Public projects u onto its public-safe view.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		Roles:     u.Roles.Slice(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	ID      string
	Email   string
	IsAdmin bool
	Roles   RoleSet
}

func (u User) Principal() Principal {
	return Principal{
		ID:      u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		Roles:   u.Roles.Clone(),
	}
}

// The three methods below are the only writers of IsAdmin.

// AddRole adds r and raises the admin flag for admin-equivalent roles.
// It reports whether the set changed.
func (u *User) AddRole(r Role) bool {
	if u.Roles == nil {
		u.Roles = NewRoleSet()
	}
	if u.Roles.Has(r) {
		return false
	}
	u.Roles[r] = struct{}{}
	if IsAdminEquivalent(r) {
		u.IsAdmin = true
	}
	return true
}

// RemoveRole removes r. When r grants admin the flag is recomputed from the
// remaining roles.
func (u *User) RemoveRole(r Role) bool {
	if !u.Roles.Has(r) {
		return false
	}
	delete(u.Roles, r)
	if IsAdminEquivalent(r) {
		u.IsAdmin = u.Roles.HasAdminEquivalent()
	}
	return true
}

// SetRoles replaces the role set wholesale and recomputes the admin flag.
func (u *User) SetRoles(roles RoleSet) {
	u.Roles = roles.Clone()
	u.IsAdmin = u.Roles.HasAdminEquivalent()
}

// NormalizeEmail is the single email policy shared by register and login:
// surrounding whitespace is dropped and matching is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

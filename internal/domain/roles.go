package domain

import (
	"sort"
	"strings"
)

type Role string

const (
	// Admin can do anything, including user and role management.
	RoleAdmin Role = "admin"
	// Editor can create and edit documents.
	RoleEditor Role = "editor"
	// Viewer is the default role given at registration.
	RoleViewer Role = "viewer"
	// User is a generic authenticated role for client-specific policies.
	RoleUser Role = "user"
)

func IsValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleEditor, RoleViewer, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole normalizes and validates a role name.
func ParseRole(r string) (Role, error) {
	r = strings.ToLower(strings.TrimSpace(r))
	if !IsValidRole(r) {
		return "", ErrInvalidRole(r)
	}
	return Role(r), nil
}

// IsAdminEquivalent reports whether holding the role grants the admin flag.
func IsAdminEquivalent(r Role) bool {
	return r == RoleAdmin
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether s holds at least one of roles.
func (s RoleSet) Intersects(roles []Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// HasAdminEquivalent reports whether any role in s grants admin.
func (s RoleSet) HasAdminEquivalent() bool {
	for r := range s {
		if IsAdminEquivalent(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

// Slice returns the roles sorted by name.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted role names, used by storage adapters and DTOs.
func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// ParseRoles builds a RoleSet from raw names, rejecting unknown ones.
func ParseRoles(raw []string) (RoleSet, error) {
	s := make(RoleSet, len(raw))
	for _, v := range raw {
		r, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		s[r] = struct{}{}
	}
	return s, nil
}

package postgres

import (
	"strings"
	"time"

	"github.com/baechuer/docvault/internal/domain"
)

// userRow mirrors the users table. Roles travel as a comma-joined string
// (array_to_string / string_to_array) so plain database/sql can scan them.
type userRow struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsAdmin      bool
	Roles        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func splitRoles(s string) domain.RoleSet {
	set := domain.NewRoleSet()
	for _, r := range strings.Split(s, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		set[domain.Role(r)] = struct{}{}
	}
	return set
}

func joinRoles(s domain.RoleSet) string {
	return strings.Join(s.Strings(), ",")
}

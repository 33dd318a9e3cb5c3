// Package access decides whether an authenticated principal may perform an
// operation. Checks always run in the same order: authentication, then role,
// then ownership. Administrators pass every check after authentication.
package access

import (
	"strings"

	"github.com/baechuer/docvault/internal/domain"
)

// Resource is anything with an owner.
type Resource struct {
	OwnerID string
}

// Requirement describes what an operation needs. Empty Roles means no role
// requirement; nil Resource means no ownership requirement.
type Requirement struct {
	Roles    []domain.Role
	Resource *Resource
}

// Check is a single capability predicate.
type Check func(p domain.Principal) error

// Evaluate runs req against p.
func Evaluate(p domain.Principal, req Requirement) error {
	checks := []Check{RequireAuthenticated(), RequireAnyRole(req.Roles...)}
	if req.Resource != nil {
		checks = append(checks, RequireOwner(req.Resource.OwnerID))
	}
	return All(checks...)(p)
}

func RequireAuthenticated() Check {
	return func(p domain.Principal) error {
		if p.ID == "" {
			return domain.ErrTokenMissing()
		}
		return nil
	}
}

// RequireAnyRole passes when p holds at least one of roles.
func RequireAnyRole(roles ...domain.Role) Check {
	return func(p domain.Principal) error {
		if len(roles) == 0 || p.IsAdmin {
			return nil
		}
		if p.Roles.Intersects(roles) {
			return nil
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return domain.ErrInsufficientRole(strings.Join(names, ","))
	}
}

// RequireOwner passes when p owns the resource. An empty owner id places
// no restriction.
func RequireOwner(ownerID string) Check {
	return func(p domain.Principal) error {
		if ownerID == "" || p.IsAdmin || p.ID == ownerID {
			return nil
		}
		return domain.ErrNotOwner()
	}
}

// All runs checks in order and returns the first failure.
func All(checks ...Check) Check {
	return func(p domain.Principal) error {
		for _, c := range checks {
			if err := c(p); err != nil {
				return err
			}
		}
		return nil
	}
}

package auth

import (
	"context"
	"strings"

	"github.com/baechuer/docvault/internal/domain"
	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

// Role mutations are last-write-wins. The admin flag is never written here;
// domain.User keeps it consistent with the role set.

func (s *Service) AddRole(ctx context.Context, userID, role string) (domain.PublicUser, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return s.mutateRoles(ctx, "admin.add_role", userID, func(u *domain.User) bool {
		return u.AddRole(r)
	})
}

func (s *Service) RemoveRole(ctx context.Context, userID, role string) (domain.PublicUser, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return s.mutateRoles(ctx, "admin.remove_role", userID, func(u *domain.User) bool {
		return u.RemoveRole(r)
	})
}

func (s *Service) SetRoles(ctx context.Context, userID string, roles []string) (domain.PublicUser, error) {
	if len(roles) == 0 {
		return domain.PublicUser{}, domain.ErrMissingField("roles")
	}
	set, err := domain.ParseRoles(roles)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return s.mutateRoles(ctx, "admin.set_roles", userID, func(u *domain.User) bool {
		u.SetRoles(set)
		return true
	})
}

func (s *Service) mutateRoles(
	ctx context.Context,
	action, userID string,
	apply func(u *domain.User) bool,
) (domain.PublicUser, error) {
	userID = strings.TrimSpace(userID)
	actorID := pkgctx.GetActorID(ctx)

	audit := func(result string, err error, extra map[string]string) {
		fields := map[string]string{
			"actor_id":  actorID,
			"target_id": userID,
			"result":    result,
		}
		if err != nil {
			fields["error_code"] = errorCode(err)
		}
		for k, v := range extra {
			fields[k] = v
		}
		s.audit(ctx, action, fields)
	}

	if userID == "" {
		err := domain.ErrMissingField("user_id")
		audit("error", err, nil)
		return domain.PublicUser{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		audit("error", err, nil)
		return domain.PublicUser{}, err
	}

	oldRoles := strings.Join(u.Roles.Strings(), ",")
	if !apply(&u) {
		return u.Public(), nil
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		audit("error", err, nil)
		return domain.PublicUser{}, err
	}

	audit("success", nil, map[string]string{
		"old_roles": oldRoles,
		"new_roles": strings.Join(updated.Roles.Strings(), ","),
	})
	s.publish(ctx, EventUserRolesChanged, updated)
	return updated.Public(), nil
}

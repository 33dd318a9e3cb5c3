package auth

import (
	"context"
	"strings"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

// UpdateUserInput carries a partial profile update; nil fields are left as is.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// ListUsers returns every user, or only holders of role when it is non-empty.
func (s *Service) ListUsers(ctx context.Context, role string) ([]domain.PublicUser, error) {
	var filter domain.Role
	if strings.TrimSpace(role) != "" {
		r, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filter = r
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (domain.PublicUser, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return domain.PublicUser{}, domain.ErrInvalidField("email", "empty")
		}
		if email != u.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return domain.PublicUser{}, domain.ErrEmailAlreadyExists()
			} else if !domain.Is(err, "user_not_found") {
				return domain.PublicUser{}, err
			}
			u.Email = email
		}
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return domain.PublicUser{}, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Msg("update user: hash password")
			return domain.PublicUser{}, hashFailure(err)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.now().UTC()

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return domain.PublicUser{}, err
	}

	fields := map[string]string{"actor_id": pkgctx.GetActorID(ctx), "target_id": id, "result": "success"}
	if in.Password != nil {
		fields["password_changed"] = "true"
	}
	s.audit(ctx, "user.update", fields)
	return updated.Public(), nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, "user.delete", map[string]string{"actor_id": pkgctx.GetActorID(ctx), "target_id": id, "result": "success"})
	s.publish(ctx, EventUserDeleted, u)
	return nil
}

type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureAdmin creates the bootstrap administrator when no account with that
// email exists yet. Existing accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	email := domain.NormalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !domain.Is(err, "user_not_found") {
		return err
	}

	created, err := s.Register(ctx, RegisterInput{
		Email:     email,
		Password:  seed.Password,
		FirstName: seed.FirstName,
		LastName:  seed.LastName,
	})
	if err != nil {
		if domain.Is(err, "email_already_exists") {
			return nil
		}
		return err
	}
	if _, err := s.SetRoles(ctx, created.ID, []string{string(domain.RoleAdmin)}); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info().Str("user_id", created.ID).Msg("admin account seeded")
	return nil
}

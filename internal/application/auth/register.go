package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new identity with the default viewer role.
// A duplicate email is a Conflict whether it is caught by the lookup here or
// by the store's uniqueness constraint on a concurrent insert.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.PublicUser, error) {
	const action = "auth.register"

	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.PublicUser{}, domain.ErrMissingField("email")
	}
	if in.Password == "" {
		return domain.PublicUser{}, domain.ErrMissingField("password")
	}
	if err := checkPassword(in.Password); err != nil {
		return domain.PublicUser{}, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.audit(ctx, action, map[string]string{"email": email, "result": "error", "error_code": "email_already_exists"})
		return domain.PublicUser{}, domain.ErrEmailAlreadyExists()
	case !domain.Is(err, "user_not_found"):
		return domain.PublicUser{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("register: hash password")
		return domain.PublicUser{}, hashFailure(err)
	}

	now := s.now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.SetRoles(domain.NewRoleSet(domain.RoleViewer))

	created, err := s.users.Create(ctx, u)
	if err != nil {
		s.audit(ctx, action, map[string]string{"email": email, "result": "error", "error_code": errorCode(err)})
		return domain.PublicUser{}, err
	}

	s.audit(ctx, action, map[string]string{"user_id": created.ID, "email": email, "result": "success"})
	s.publish(ctx, EventUserRegistered, created)
	return created.Public(), nil
}

package auth

import (
	"context"

	"github.com/baechuer/docvault/internal/domain"
)

func (s *Service) GetProfile(ctx context.Context, id string) (domain.PublicUser, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return u.Public(), nil
}

package auth

import (
	"context"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
)

// ValidateToken checks signature, expiry and revocation, in that order.
// A registry lookup failure rejects the token.
func (s *Service) ValidateToken(ctx context.Context, token string) (TokenClaims, error) {
	if token == "" {
		s.obs.TokenValidation("missing")
		return TokenClaims{}, domain.ErrTokenMissing()
	}

	claims, err := s.signer.VerifyAccessToken(token)
	if err != nil {
		if domain.Is(err, "token_expired") {
			s.obs.TokenValidation("expired")
			return TokenClaims{}, domain.ErrTokenExpired()
		}
		s.obs.TokenValidation("invalid")
		return TokenClaims{}, domain.ErrTokenInvalid()
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		s.obs.TokenValidation("registry_error")
		logger.WithCtx(ctx).Error().Err(err).Msg("revocation lookup failed")
		return TokenClaims{}, domain.ErrUnauthorized(err)
	}
	if revoked {
		s.obs.TokenValidation("revoked")
		return TokenClaims{}, domain.ErrTokenRevoked()
	}

	s.obs.TokenValidation("valid")
	return claims, nil
}

// Authenticate resolves a bearer token into the caller's current principal.
// Roles come from the store, not the token, so role changes apply to
// tokens already issued.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return domain.Principal{}, err
	}

	u, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.Principal{}, domain.ErrTokenInvalid()
		}
		return domain.Principal{}, err
	}
	return u.Principal(), nil
}

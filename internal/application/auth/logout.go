package auth

import (
	"context"

	"github.com/baechuer/docvault/internal/domain"
)

// Logout revokes token until its natural expiry.
// Logging out twice is fine, and a token that is already unusable
// (malformed, forged, expired) is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	const action = "auth.logout"

	if token == "" {
		return nil
	}
	claims, err := s.signer.VerifyAccessToken(token)
	if err != nil {
		return nil
	}

	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt); err != nil {
		s.audit(ctx, action, map[string]string{"user_id": claims.SubjectID, "result": "error", "error_code": errorCode(err)})
		return domain.ErrRedisUnavailable(err)
	}

	s.obs.TokenRevoked()
	s.audit(ctx, action, map[string]string{"user_id": claims.SubjectID, "result": "success"})
	return nil
}

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
)

// Login verifies credentials and issues an access token.
// IMPORTANT: unknown email, wrong password and internal signing failures all
// surface as the same invalid_credentials error (no user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	const action = "auth.login"

	email = domain.NormalizeEmail(email)
	fail := func(reason string, cause error) (LoginResult, error) {
		s.obs.LoginAttempt("failure")
		s.audit(ctx, action, map[string]string{"email": email, "result": "error", "reason": reason})
		if cause != nil {
			logger.WithCtx(ctx).Error().Err(cause).Str("reason", reason).Msg("login failed")
		}
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if email == "" || password == "" {
		return fail("empty_credentials", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.verifyDummy(password)
		if domain.Is(err, "user_not_found") {
			return fail("unknown_email", nil)
		}
		return fail("lookup_failed", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return fail("bad_password", nil)
	}
	s.upgradeHash(ctx, u, password)

	token, claims, err := s.issueAccessToken(u)
	if err != nil {
		return fail("sign_failed", err)
	}

	s.obs.LoginAttempt("success")
	s.audit(ctx, action, map[string]string{"user_id": u.ID, "email": email, "result": "success"})

	return LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(claims.ExpiresAt.Sub(claims.IssuedAt).Seconds()),
		User:        u.Public(),
	}, nil
}

// verifyDummy runs the hasher against a throwaway hash so a miss takes as
// long as a wrong password.
func (s *Service) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash == "" {
		return
	}
	_ = s.hasher.Verify(password, s.dummyHash)
}

func (s *Service) issueAccessToken(u domain.User) (string, TokenClaims, error) {
	now := s.now().UTC().Truncate(time.Second)
	claims := TokenClaims{
		TokenID:   uuid.NewString(),
		SubjectID: u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.accessTTL),
	}
	token, err := s.signer.SignAccessToken(claims)
	if err != nil {
		return "", TokenClaims{}, domain.ErrTokenSignFailed(err)
	}
	return token, claims, nil
}

// upgradeHash re-hashes with the current cost after a successful login.
// Failures only cost a log line; the old hash keeps working.
func (s *Service) upgradeHash(ctx context.Context, u domain.User, password string) {
	rh, ok := s.hasher.(Rehasher)
	if !ok || !rh.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("password rehash failed")
		return
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now().UTC()
	if _, err := s.users.Update(ctx, u); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("password rehash not stored")
	}
}

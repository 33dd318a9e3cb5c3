package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
)

const (
	defaultAccessTTL = time.Hour
	minPasswordLen   = 8
	// bcrypt only reads this many bytes, and multibyte runes count in full.
	maxPasswordBytes = 72
)

type Service struct {
	users   UserRepo
	hasher  PasswordHasher
	signer  TokenSigner
	revoked RevocationRegistry
	pub     EventPublisher

	accessTTL time.Duration
	now       func() time.Time
	audit     func(ctx context.Context, action string, fields map[string]string)
	obs       Observer

	// Compared against on unknown-email logins so they cost one Verify too.
	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	AccessTTL time.Duration
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	revoked RevocationRegistry,
	pub EventPublisher,
	cfg Config,
) *Service {
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		signer:  signer,
		revoked: revoked,
		pub:     pub,

		accessTTL: ttl,
		now:       time.Now,
		audit:     func(context.Context, string, map[string]string) {},
		obs:       noopObserver{},
	}
}

// LoginResult is what handlers map onto the login response body.
type LoginResult struct {
	AccessToken string
	TokenType   string // "Bearer"
	ExpiresIn   int64  // seconds
	User        domain.PublicUser
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.obs = o
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AccessTTL is the validity window of issued access tokens.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// publish sends a lifecycle event; failures are logged and swallowed.
func (s *Service) publish(ctx context.Context, typ string, u domain.User) {
	if s.pub == nil {
		return
	}
	evt := UserEvent{
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email,
		Roles:      u.Roles.Strings(),
		IsAdmin:    u.IsAdmin,
		OccurredAt: s.now().UTC(),
	}
	if err := s.pub.PublishUserEvent(ctx, evt); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("event", typ).Str("user_id", u.ID).Msg("publish user event failed")
	}
}

// errorCode is the audit error_code for err.
func errorCode(err error) string {
	var de *domain.Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &de):
		return de.Code
	default:
		return "non_domain_error"
	}
}

// checkPassword applies the length policy in bytes, before any hashing.
func checkPassword(pw string) error {
	switch {
	case len(pw) < minPasswordLen:
		return domain.ErrWeakPassword("too_short")
	case len(pw) > maxPasswordBytes:
		return domain.ErrWeakPassword("too_long")
	}
	return nil
}

// hashFailure hides a hasher error behind Unauthorized, keeping it as the cause.
func hashFailure(err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		err = domain.ErrHashFailed(err)
	}
	return domain.ErrUnauthorized(err)
}

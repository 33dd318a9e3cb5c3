package auth

import (
	"context"
	"time"

	"github.com/baechuer/docvault/internal/domain"
)

/*
UserRepo
--------
Credential store port.
GetByEmail expects an already-normalized email.
Misses are reported as domain.ErrUserNotFound, and a uniqueness violation on
Create as domain.ErrEmailAlreadyExists.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error

	// List returns every user holding role, or all users when role is empty.
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
}

/*
PasswordHasher
--------------
Salted one-way hashing. Verify never errors: malformed hashes simply do not match.
*/
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// Rehasher is optionally implemented by a PasswordHasher whose parameters
// can change between deploys. Login upgrades stale hashes in place.
type Rehasher interface {
	NeedsRehash(hashed string) bool
}

/*
TokenSigner
-----------
Issues and verifies signed access tokens.
VerifyAccessToken reports domain.ErrTokenExpired for expired tokens and
domain.ErrTokenInvalid for anything else it rejects.
*/
type TokenClaims struct {
	TokenID   string
	SubjectID string
	Email     string
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenSigner interface {
	SignAccessToken(c TokenClaims) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
RevocationRegistry
------------------
Set of tokens rejected before their natural expiry.
Entries only need to live until the token's own expiry.
*/
type RevocationRegistry interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

/*
EventPublisher
--------------
Best-effort user lifecycle notifications (RabbitMQ in production).
*/
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, evt UserEvent) error
}

const (
	EventUserRegistered   = "user.registered"
	EventUserRolesChanged = "user.roles_changed"
	EventUserDeleted      = "user.deleted"
)

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Roles      []string  `json:"roles,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	OccurredAt time.Time `json:"occurred_at"`
}

/*
Observer
--------
Counters for authentication outcomes. The Prometheus adapter lives in
internal/infrastructure/metrics.
*/
type Observer interface {
	LoginAttempt(status string)
	TokenValidation(status string)
	TokenRevoked()
}

type noopObserver struct{}

func (noopObserver) LoginAttempt(string)    {}
func (noopObserver) TokenValidation(string) {}
func (noopObserver) TokenRevoked()          {}

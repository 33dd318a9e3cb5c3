package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/docvault/internal/domain"
	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

// Authenticator resolves a bearer token to the caller. It covers signature,
// expiry and revocation checks.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", domain.ErrTokenMissing()
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", domain.ErrTokenInvalid()
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", domain.ErrTokenMissing()
	}
	return raw, nil
}

// Auth authenticates the request and injects the principal into its context.
func Auth(authn Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := BearerToken(r)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			p, err := authn.Authenticate(r.Context(), raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = pkgctx.WithActorID(ctx, p.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

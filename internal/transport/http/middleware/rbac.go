package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/docvault/internal/application/access"
	"github.com/baechuer/docvault/internal/domain"
)

// RequireRoles lets the request through when the principal holds any of
// roles. Admins always pass. Must run after Auth.
func RequireRoles(writeErr WriteErrFunc, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if err := access.Evaluate(p, access.Requirement{Roles: roles}); err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin treats the URL parameter param as the owning user id.
func RequireSelfOrAdmin(param string, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			req := access.Requirement{Resource: &access.Resource{OwnerID: chi.URLParam(r, param)}}
			if err := access.Evaluate(p, req); err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

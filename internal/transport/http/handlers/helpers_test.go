package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/application/documents"
	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/infrastructure/memory"
	"github.com/baechuer/docvault/internal/infrastructure/security"
	"github.com/baechuer/docvault/internal/transport/http/middleware"
	"github.com/baechuer/docvault/internal/transport/http/response"
)

type testEnv struct {
	svc   *auth.Service
	docs  *documents.Service
	users *memory.UserRepo
	mux   chi.Router
}

// newTestEnv wires real in-memory adapters behind a minimal router. Guards
// are applied the same way the production router applies them.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	svc := auth.NewService(
		users,
		security.NewBcryptHasher(4),
		security.NewJWTSigner("test-secret", "docvault-test"),
		memory.NewRevocationRegistry(),
		memory.NewNoopPublisher(zerolog.Nop()),
		auth.Config{},
	)
	docs := documents.NewService(memory.NewDocumentRepo())

	ah := NewAuthHandler(svc)
	uh := NewUserHandler(svc)
	dh := NewDocumentHandler(docs)
	authMW := middleware.Auth(svc, response.WriteError)
	adminMW := middleware.RequireRoles(response.WriteError, domain.RoleAdmin)
	selfMW := middleware.RequireSelfOrAdmin("id", response.WriteError)

	r := chi.NewRouter()
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.Post("/auth/logout", ah.Logout)
	r.With(authMW).Get("/auth/profile", ah.Profile)
	r.With(authMW, adminMW).Get("/auth/admin", ah.Admin)

	r.With(authMW, adminMW).Get("/users", uh.List)
	r.With(authMW, selfMW).Get("/users/{id}", uh.Get)
	r.With(authMW, selfMW).Patch("/users/{id}", uh.Update)
	r.With(authMW, selfMW).Delete("/users/{id}", uh.Delete)
	r.With(authMW, adminMW).Post("/users/{id}/roles", uh.AddRole)
	r.With(authMW, adminMW).Put("/users/{id}/roles", uh.SetRoles)
	r.With(authMW, adminMW).Delete("/users/{id}/roles/{role}", uh.RemoveRole)

	r.With(authMW).Post("/documents", dh.Create)
	r.With(authMW).Get("/documents", dh.List)
	r.With(authMW).Get("/documents/{id}", dh.Get)
	r.With(authMW).Patch("/documents/{id}", dh.Update)
	r.With(authMW).Delete("/documents/{id}", dh.Delete)

	return &testEnv{svc: svc, docs: docs, users: users, mux: r}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rd = bytes.NewBufferString(s)
		} else {
			rd = mustJSONBody(t, body)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

// registerAndLogin creates a user through the service and returns its id
// and a fresh access token.
func (e *testEnv) registerAndLogin(t *testing.T, email string, roles ...string) (string, string) {
	t.Helper()
	ctx := context.Background()

	u, err := e.svc.Register(ctx, auth.RegisterInput{Email: email, Password: "Password123!"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if len(roles) > 0 {
		if _, err := e.svc.SetRoles(ctx, u.ID, roles); err != nil {
			t.Fatalf("set roles: %v", err)
		}
	}
	res, err := e.svc.Login(ctx, email, "Password123!")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return u.ID, res.AccessToken
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadData decodes the {"data": ...} envelope into out.
func mustReadData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || len(env.Data) == 0 {
		t.Fatalf("decode envelope failed; body=%s", rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data failed; body=%s err=%v", rr.Body.String(), err)
	}
}

func mustErrCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if rr.Code != status {
		t.Fatalf("expected status %d, got %d; body=%s", status, rr.Code, rr.Body.String())
	}
	var body response.ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v; body=%s", err, rr.Body.String())
	}
	if body.Error.Code != code {
		t.Fatalf("expected code %q, got %q", code, body.Error.Code)
	}
}

package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/application/documents"
	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/infrastructure/memory"
	"github.com/baechuer/docvault/internal/infrastructure/metrics"
	"github.com/baechuer/docvault/internal/infrastructure/security"
	http_handlers "github.com/baechuer/docvault/internal/transport/http/handlers"
	"github.com/baechuer/docvault/internal/transport/http/middleware"
	"github.com/baechuer/docvault/internal/transport/http/response"
	"github.com/baechuer/docvault/internal/transport/http/router"
)

type server struct {
	t   *testing.T
	h   http.Handler
	svc *auth.Service
}

func newServer(t *testing.T) *server {
	t.Helper()

	m := metrics.New(prometheus.NewRegistry())
	svc := auth.NewService(
		memory.NewUserRepo(),
		security.NewBcryptHasher(4),
		security.NewJWTSigner("e2e-secret", "docvault"),
		memory.NewRevocationRegistry(),
		memory.NewNoopPublisher(zerolog.Nop()),
		auth.Config{},
	).WithObserver(m)
	docs := documents.NewService(memory.NewDocumentRepo())

	h, err := router.New(router.Deps{
		Health:      http_handlers.NewHealthHandler(nil),
		Auth:        http_handlers.NewAuthHandler(svc),
		Users:       http_handlers.NewUserHandler(svc),
		Documents:   http_handlers.NewDocumentHandler(docs),
		Metrics:     m.Handler(),
		RequestIDMW: middleware.RequestID,
		MetricsMW:   middleware.Metrics(m),
		AuthMW:      middleware.Auth(svc, response.WriteError),
		AdminMW:     middleware.RequireRoles(response.WriteError, domain.RoleAdmin),
		SelfMW:      middleware.RequireSelfOrAdmin("id", response.WriteError),
	})
	require.NoError(t, err)
	return &server{t: t, h: h, svc: svc}
}

func (s *server) call(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)

	out := map[string]any{}
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr.Code, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data envelope: %v", body)
	return d
}

func errCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	c, _ := e["code"].(string)
	return c
}

func TestE2E_RegisterLoginProfileLogout(t *testing.T) {
	s := newServer(t)

	code, body := s.call(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "dana@example.com", "password": "Password123!",
	})
	require.Equal(t, http.StatusCreated, code)
	userID := data(t, body)["id"].(string)

	code, body = s.call(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "DANA@example.com", "password": "Password123!",
	})
	require.Equal(t, http.StatusOK, code)
	token := data(t, body)["access_token"].(string)
	assert.Equal(t, "Bearer", data(t, body)["token_type"])

	code, body = s.call(http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, userID, data(t, body)["id"])

	code, _ = s.call(http.MethodGet, "/auth/admin", token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.call(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = s.call(http.MethodGet, "/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", errCode(body))
}

func TestE2E_AdminManagesRolesAndDocuments(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.svc.EnsureAdmin(t.Context(), auth.AdminSeed{Email: "root@example.com", Password: "RootPassword1!"}))

	_, body := s.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "root@example.com", "password": "RootPassword1!"})
	admin := data(t, body)["access_token"].(string)

	_, body = s.call(http.MethodPost, "/auth/register", "", map[string]string{"email": "ed@example.com", "password": "Password123!"})
	edID := data(t, body)["id"].(string)
	_, body = s.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "ed@example.com", "password": "Password123!"})
	ed := data(t, body)["access_token"].(string)

	code, body := s.call(http.MethodPost, "/users/"+edID+"/roles", admin, map[string]string{"role": "editor"})
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, []any{"editor", "viewer"}, data(t, body)["roles"])

	code, body = s.call(http.MethodGet, "/users?role=editor", ed, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "insufficient_role", errCode(body))

	code, body = s.call(http.MethodPost, "/documents", ed, map[string]any{
		"title": "Q3 report", "file_name": "q3.pdf", "original_name": "Q3.pdf",
		"mime_type": "application/pdf", "file_size": 2048,
	})
	require.Equal(t, http.StatusCreated, code)
	docID := data(t, body)["id"].(string)

	code, _ = s.call(http.MethodGet, "/documents/"+docID, admin, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.call(http.MethodDelete, "/users/"+edID, admin, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = s.call(http.MethodGet, "/documents", ed, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthorized", errCode(body))
}

func TestE2E_MetricsExposeRouteCounters(t *testing.T) {
	s := newServer(t)

	s.call(http.MethodGet, "/healthz", "", nil)
	s.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "whatever1"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	out := rr.Body.String()
	assert.Contains(t, out, `docvault_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, out, `docvault_login_attempts_total{status="failure"} 1`)
}

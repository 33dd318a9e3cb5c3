package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baechuer/docvault/internal/domain"
	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

type decodeDst struct {
	Title string `json:"title"`
	Size  int    `json:"size"`
}

func decodeBody(t *testing.T, body string) (decodeDst, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(body))
	var dst decodeDst
	err := DecodeJSON(httptest.NewRecorder(), req, &dst)
	return dst, err
}

func TestDecodeJSON_OK(t *testing.T) {
	dst, err := decodeBody(t, " {\"title\":\"report\",\"size\":12}\n")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if dst.Title != "report" || dst.Size != 12 {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"truncated":     `{"title":"x",`,
		"unknown field": `{"title":"x","owner_id":"someone-else"}`,
		"two values":    `{}{}`,
		"trailing junk": `{"title":"x"} ]`,
		"wrong type":    `{"size":"twelve"}`,
		"oversized":     `{"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeBody(t, body)
			if !domain.Is(err, "invalid_json") {
				t.Fatalf("expected invalid_json, got %v", err)
			}
		})
	}
}

func TestWriteError_DomainError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/u-1", nil)
	req = req.WithContext(pkgctx.WithRequestID(req.Context(), "req-123"))
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrMissingField("email"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != jsonContentType {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body ErrorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "missing_field" || body.Error.Meta["field"] != "email" {
		t.Fatalf("unexpected payload: %+v", body.Error)
	}
	if body.Error.RequestID != "req-123" {
		t.Fatalf("expected request id, got %q", body.Error.RequestID)
	}
}

func TestWriteError_WrappedDomainError(t *testing.T) {
	rr := httptest.NewRecorder()
	err := errors.Join(errors.New("context"), domain.ErrDocumentNotFound())

	WriteError(rr, httptest.NewRequest(http.MethodGet, "/documents/x", nil), err)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("pq: password authentication failed"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "password authentication") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
	var body ErrorBody
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body.Error.Code != "internal_error" || len(body.Error.Meta) != 0 {
		t.Fatalf("unexpected payload: %+v", body.Error)
	}
}

func TestWriteError_RetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	err := domain.WithMeta(domain.ErrRateLimited("ip"), map[string]string{"scope": "ip", "retry_after": "30"})

	WriteError(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil), err)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After=30, got %q", got)
	}
}

func TestWriteError_TokenFailuresCollapse(t *testing.T) {
	errs := []error{
		domain.ErrTokenMissing(),
		domain.ErrTokenInvalid(),
		domain.ErrTokenExpired(),
		domain.ErrTokenRevoked(),
		domain.ErrUnauthorized(errors.New("registry down")),
	}
	var first string
	for _, err := range errs {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodGet, "/auth/profile", nil), err)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", err, rr.Code)
		}
		var body ErrorBody
		_ = json.Unmarshal(rr.Body.Bytes(), &body)
		if body.Error.Code != "unauthorized" || len(body.Error.Meta) != 0 {
			t.Fatalf("%v: unexpected payload %+v", err, body.Error)
		}
		if rr.Header().Get("WWW-Authenticate") == "" {
			t.Fatalf("%v: missing WWW-Authenticate", err)
		}
		if first == "" {
			first = rr.Body.String()
		} else if rr.Body.String() != first {
			t.Fatalf("%v: body %s differs from %s", err, rr.Body.String(), first)
		}
	}
}

func TestWriteError_InvalidCredentialsKeepsCode(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil), domain.ErrInvalidCredentials())

	var body ErrorBody
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if rr.Code != http.StatusUnauthorized || body.Error.Code != "invalid_credentials" {
		t.Fatalf("unexpected response %d %+v", rr.Code, body.Error)
	}
}

func TestStatusFromKind(t *testing.T) {
	cases := map[domain.ErrKind]int{
		domain.KindValidation:     http.StatusBadRequest,
		domain.KindAuth:           http.StatusUnauthorized,
		domain.KindForbidden:      http.StatusForbidden,
		domain.KindNotFound:       http.StatusNotFound,
		domain.KindConflict:       http.StatusConflict,
		domain.KindRateLimited:    http.StatusTooManyRequests,
		domain.KindInfrastructure: http.StatusServiceUnavailable,
		domain.KindInternal:       http.StatusInternalServerError,
		"unknown":                 http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusFromKind(kind); got != want {
			t.Fatalf("kind=%q expected %d got %d", kind, want, got)
		}
	}
}

func TestEnvelopes(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		OK(rr, map[string]string{"id": "d-1"})
		if rr.Code != http.StatusOK || rr.Body.String() != "{\"data\":{\"id\":\"d-1\"}}\n" {
			t.Fatalf("unexpected: %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("created", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Created(rr, map[string]string{"id": "d-1"})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rr.Code)
		}
	})

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		List(rr, []string{"a", "b"}, 2)
		if rr.Body.String() != "{\"data\":[\"a\",\"b\"],\"meta\":{\"count\":2}}\n" {
			t.Fatalf("unexpected body %q", rr.Body.String())
		}
	})

	t.Run("no content", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NoContent(rr)
		if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
			t.Fatalf("unexpected: %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("keeps caller content type", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rr.Header().Set("Content-Type", "application/problem+json")
		WriteJSON(rr, http.StatusTeapot, map[string]int{"x": 1})
		if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("content type overridden: %q", ct)
		}
	})
}

package response

import (
	"errors"
	"net/http"

	"github.com/baechuer/docvault/internal/domain"
	"github.com/baechuer/docvault/internal/logger"
	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

const (
	unauthorizedCode = "unauthorized"
	credentialsCode  = "invalid_credentials"
)

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
}

func statusFromKind(kind domain.ErrKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteError renders err as {"error": {...}}. Anything that is not a
// *domain.Error becomes an opaque 500, and every 401 other than a failed
// login carries the single code "unauthorized".
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	payload := ErrorPayload{
		Code:      "internal_error",
		Message:   "internal error",
		RequestID: pkgctx.GetRequestID(r.Context()),
	}
	status := http.StatusInternalServerError

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		payload.Code, payload.Message, payload.Meta = de.Code, de.Message, de.Meta
	}
	if status == http.StatusUnauthorized && payload.Code != credentialsCode {
		// Missing, forged, expired and revoked tokens look the same to clients.
		logger.WithCtx(r.Context()).Debug().Str("code", payload.Code).Str("path", r.URL.Path).Msg("request unauthenticated")
		payload.Code, payload.Message, payload.Meta = unauthorizedCode, "authentication required", nil
		w.Header().Set("WWW-Authenticate", `Bearer realm="docvault"`)
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.WithCtx(r.Context()).Error().Err(err).
			Str("code", payload.Code).
			Str("path", r.URL.Path).
			Msg("request failed")
	case status == http.StatusTooManyRequests && payload.Meta["retry_after"] != "":
		w.Header().Set("Retry-After", payload.Meta["retry_after"])
	}

	w.Header().Set("Content-Type", jsonContentType)
	WriteJSON(w, status, ErrorBody{Error: payload})
}

package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups error codes by the HTTP status they surface as.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is the error type every layer above storage speaks.
// Code is the stable machine-readable identifier clients branch on; Message
// is safe to show them. Cause never leaves the process.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// With sets a single meta entry and returns e.
func (e *Error) With(key, value string) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]string, 1)
	}
	e.Meta[key] = value
	return e
}

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	e := New(kind, code, msg)
	e.Cause = cause
	return e
}

// WithMeta replaces the meta map of err.
func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err is, or wraps, a domain error with the given code.
func Is(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if !errors.As(err, &de) {
		return ""
	}
	return de.Kind
}

// 400

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return New(KindValidation, "missing_field", "missing required field").With("field", field)
}

func ErrInvalidField(field, reason string) *Error {
	return New(KindValidation, "invalid_field", "invalid field").
		With("field", field).
		With("reason", reason)
}

func ErrWeakPassword(reason string) *Error {
	return New(KindValidation, "weak_password", "password does not meet requirements").With("reason", reason)
}

func ErrInvalidRole(role string) *Error {
	return New(KindValidation, "invalid_role", "invalid role").With("role", role)
}

// 401

// ErrInvalidCredentials is shared by unknown-email and wrong-password so the
// response does not reveal which accounts exist.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

func ErrTokenMissing() *Error { return New(KindAuth, "token_missing", "no token provided") }
func ErrTokenInvalid() *Error { return New(KindAuth, "token_invalid", "invalid token") }
func ErrTokenExpired() *Error { return New(KindAuth, "token_expired", "token is expired") }
func ErrTokenRevoked() *Error { return New(KindAuth, "token_revoked", "token has been revoked") }

// ErrUnauthorized hides an internal failure (hashing, signing, registry lookup)
// behind a plain 401. The cause is kept for logs only.
func ErrUnauthorized(cause error) *Error {
	return Wrap(KindAuth, "unauthorized", "unauthorized", cause)
}

// 403

func ErrForbidden() *Error { return New(KindForbidden, "forbidden", "forbidden") }

func ErrInsufficientRole(required string) *Error {
	return New(KindForbidden, "insufficient_role", "insufficient role").With("required", required)
}

func ErrNotOwner() *Error {
	return New(KindForbidden, "not_owner", "resource belongs to another user")
}

// 404, 409, 429

func ErrUserNotFound() *Error { return New(KindNotFound, "user_not_found", "user not found") }

func ErrDocumentNotFound() *Error {
	return New(KindNotFound, "document_not_found", "document not found")
}

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "email already registered")
}

func ErrRateLimited(scope string) *Error {
	return New(KindRateLimited, "rate_limited", "too many requests").With("scope", scope)
}

// 5xx

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "redis_unavailable", "cache unavailable", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "message broker unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}

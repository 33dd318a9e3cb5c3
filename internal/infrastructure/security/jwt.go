package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/domain"
)

// JWTSigner issues and verifies HS256 access tokens. The secret is fixed at
// construction; an empty issuer disables the iss check. Expiry is checked
// without leeway: revocation entries are only kept until exp.
type JWTSigner struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	s := &JWTSigner{secret: []byte(secret), issuer: issuer}
	s.parser = s.newParser(time.Now)
	return s
}

// WithClock sets the time used for exp and iat checks.
func (s *JWTSigner) WithClock(now func() time.Time) *JWTSigner {
	if now != nil {
		s.parser = s.newParser(now)
	}
	return s
}

func (s *JWTSigner) newParser(now func() time.Time) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	return jwt.NewParser(opts...)
}

// wire claims: sub, jti, iss, iat, exp plus email and isAdmin.
type accessClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) SignAccessToken(c auth.TokenClaims) (string, error) {
	rc := jwt.RegisteredClaims{
		ID:        c.TokenID,
		Issuer:    s.issuer,
		Subject:   c.SubjectID,
		IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email:            c.Email,
		IsAdmin:          c.IsAdmin,
		RegisteredClaims: rc,
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) key(*jwt.Token) (any, error) { return s.secret, nil }

func (s *JWTSigner) VerifyAccessToken(token string) (auth.TokenClaims, error) {
	var ac accessClaims
	parsed, err := s.parser.ParseWithClaims(token, &ac, s.key)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.TokenClaims{}, domain.ErrTokenExpired()
	case err != nil, !parsed.Valid, ac.Subject == "":
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	out := auth.TokenClaims{
		TokenID:   ac.ID,
		SubjectID: ac.Subject,
		Email:     ac.Email,
		IsAdmin:   ac.IsAdmin,
		ExpiresAt: ac.ExpiresAt.Time,
	}
	if ac.IssuedAt != nil {
		out.IssuedAt = ac.IssuedAt.Time
	}
	return out, nil
}

package dto

import (
	"time"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/domain"
)

// UserView is the standard user payload. It never carries the password hash.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserView(u domain.PublicUser) UserView {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserViews(us []domain.PublicUser) []UserView {
	out := make([]UserView, len(us))
	for i, u := range us {
		out[i] = NewUserView(u)
	}
	return out
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"` // "Bearer"
	ExpiresIn   int64    `json:"expires_in"` // seconds
	User        UserView `json:"user"`
}

func NewLoginResponse(res auth.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		User:        NewUserView(res.User),
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}

// AdminData is returned by the admin probe.
type AdminData struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

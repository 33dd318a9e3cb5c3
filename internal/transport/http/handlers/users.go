package http_handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/docvault/internal/application/auth"
	"github.com/baechuer/docvault/internal/transport/http/dto"
	"github.com/baechuer/docvault/internal/transport/http/response"
)

// UserHandler serves user management. Route guards decide who may call
// which method; handlers assume authorization already happened.
type UserHandler struct {
	svc *auth.Service
}

func NewUserHandler(svc *auth.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /users?role=editor
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.List(w, dto.NewUserViews(users), len(users))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), auth.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AddRole handles POST /users/{id}/roles {"role": "editor"}
func (h *UserHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	var req dto.RoleRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.AddRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

// RemoveRole handles DELETE /users/{id}/roles/{role}
func (h *UserHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.RemoveRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "role"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

// SetRoles handles PUT /users/{id}/roles {"roles": ["viewer", "editor"]}
func (h *UserHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRolesRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.SetRoles(r.Context(), chi.URLParam(r, "id"), req.Roles)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

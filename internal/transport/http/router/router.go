package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Profile(w http.ResponseWriter, r *http.Request)
	Admin(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Role management (admin)
	AddRole(w http.ResponseWriter, r *http.Request)
	RemoveRole(w http.ResponseWriter, r *http.Request)
	SetRoles(w http.ResponseWriter, r *http.Request)
}

type DocumentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health    HealthHandler
	Auth      AuthHandler
	Users     UserHandler
	Documents DocumentHandler

	// Metrics serves /metrics when set.
	Metrics http.Handler

	RequestIDMW func(http.Handler) http.Handler
	AuthMW      func(http.Handler) http.Handler
	AdminMW     func(http.Handler) http.Handler
	// SelfMW lets the {id} user or an admin through.
	SelfMW func(http.Handler) http.Handler

	// Optional.
	AccessLogMW func(http.Handler) http.Handler
	MetricsMW   func(http.Handler) http.Handler
	SecurityMW  func(http.Handler) http.Handler
	AuthRateMW  func(http.Handler) http.Handler
	APIRateMW   func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.Documents == nil {
		return nil, fmt.Errorf("nil Documents handler")
	}
	if deps.RequestIDMW == nil {
		return nil, fmt.Errorf("nil RequestID middleware")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}
	if deps.AdminMW == nil {
		return nil, fmt.Errorf("nil Admin middleware")
	}
	if deps.SelfMW == nil {
		return nil, fmt.Errorf("nil Self middleware")
	}

	authRate := orNoop(deps.AuthRateMW)
	apiRate := orNoop(deps.APIRateMW)

	r := chi.NewRouter()
	r.Use(deps.RequestIDMW)
	if deps.AccessLogMW != nil {
		r.Use(deps.AccessLogMW)
	}
	if deps.MetricsMW != nil {
		r.Use(deps.MetricsMW)
	}
	if deps.SecurityMW != nil {
		r.Use(deps.SecurityMW)
	}
	r.Use(chimw.Recoverer)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(authRate).Post("/register", deps.Auth.Register)
		r.With(authRate).Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)
		r.With(deps.AuthMW, apiRate).Get("/profile", deps.Auth.Profile)
		r.With(deps.AuthMW, apiRate, deps.AdminMW).Get("/admin", deps.Auth.Admin)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(deps.AuthMW)
		r.Use(apiRate)

		r.With(deps.AdminMW).Get("/", deps.Users.List)

		r.Route("/{id}", func(r chi.Router) {
			r.With(deps.SelfMW).Get("/", deps.Users.Get)
			r.With(deps.SelfMW).Patch("/", deps.Users.Update)
			r.With(deps.SelfMW).Delete("/", deps.Users.Delete)

			r.Route("/roles", func(r chi.Router) {
				r.Use(deps.AdminMW)
				r.Post("/", deps.Users.AddRole)
				r.Put("/", deps.Users.SetRoles)
				r.Delete("/{role}", deps.Users.RemoveRole)
			})
		})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Use(deps.AuthMW)
		r.Use(apiRate)

		r.Post("/", deps.Documents.Create)
		r.Get("/", deps.Documents.List)
		r.Get("/{id}", deps.Documents.Get)
		r.Patch("/{id}", deps.Documents.Update)
		r.Delete("/{id}", deps.Documents.Delete)
	})

	return r, nil
}

func orNoop(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw != nil {
		return mw
	}
	return func(next http.Handler) http.Handler { return next }
}

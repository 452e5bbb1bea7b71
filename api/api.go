// Package api exposes the HTTP surface over the authentication backend and
// session manager: sign-in/sign-out, the protected user endpoints, and
// diagnostics.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/tfields/gatehouse/auth"
	"github.com/tfields/gatehouse/session"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	backend  *auth.Backend
	sessions *session.Manager
	state    *AppState
	audit    *auditLogger
	logger   *slog.Logger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger. If not set, a default JSON logger
// writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates a new API instance.
func New(backend *auth.Backend, sessions *session.Manager, opts ...Option) *API {
	a := &API{
		backend:  backend,
		sessions: sessions,
		state:    NewAppState(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	a.audit = newAuditLogger(a.logger)
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/signin", a.SignIn)
	r.Post("/auth/signout", a.SignOut)

	r.With(a.AuthMiddleware).Get("/user/config", a.GetConfig)
	r.With(a.AuthMiddleware).Put("/user/config", a.PutConfig)
	r.With(a.AuthMiddleware).Put("/user/passwd", a.UpdatePassword)

	r.Get("/status", a.Status)

	return r
}

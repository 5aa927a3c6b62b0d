// Package gateway exposes the wallet-session lifecycle over HTTP to the
// dashboard frontend: unlock, lock, refresh-backed dispatch, auto-unlock
// and session validation. It holds the HTTP-only session cookie with the
// browser and forwards wallet operations to the custody backend.
package gateway

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/verdantlabs/walletgate/autounlock"
	"github.com/verdantlabs/walletgate/custody"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	client     *custody.Client
	autoUnlock *autounlock.Manager
	logger     *slog.Logger
	audit      *auditLogger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
		a.audit = newAuditLogger(logger)
	}
}

// New creates a new API instance.
func New(client *custody.Client, autoUnlock *autounlock.Manager, opts ...Option) *API {
	a := &API{
		client:     client,
		autoUnlock: autoUnlock,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
		a.audit = newAuditLogger(a.logger)
	}
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

	r.Get("/session", a.SessionStatus)
	r.Get("/session/validate", a.ValidateSession)
	r.Post("/session/logout", a.Logout)

	r.Route("/wallets/{walletID}", func(r chi.Router) {
		r.Get("/", a.WalletStatus)
		r.Delete("/", a.DeleteWallet)
		r.Post("/unlock", a.UnlockWallet)
		r.Post("/lock", a.LockWallet)
		r.Put("/promote", a.PromoteWallet)
		r.Post("/change-password", a.ChangePassword)
		r.Post("/auto-unlock", a.AttemptAutoUnlock)
		r.Post("/auto-unlock/enable", a.EnableAutoUnlock)
		r.Delete("/auto-unlock", a.RevokeAutoUnlock)
	})

	return r
}

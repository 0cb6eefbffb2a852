package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/platform/auth/token"
	"github.com/scc-freight/freight-api/internal/platform/logging"
)

// NewRouter constructs the API HTTP router.
//
// Authentication is layered: every /api route behind the bearer middleware
// trusts the token's claims, and mutating routes additionally re-fetch the
// live account so revocations and role changes take effect immediately.
// The two read-heavy board endpoints (GET /api/loads, GET /api/loads/mine)
// and GET /api/account/me stay on the claims tier.
func NewRouter(s *Server, verifier *token.Signer, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authenticate := NewAuthMiddleware(verifier)
	requireAccount := NewRequireAccount(s.Accounts)

	r.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Post("/users", s.handleRegister)
		r.Get("/verify/{token}", s.handleVerifyEmail)
		r.Post("/login", s.handleLogin)

		// Claims tier.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/account/me", s.handleGetMe)

			r.With(RequireRole(domain.RoleDispatcher, domain.RoleCarrier, domain.RoleAdmin)).
				Get("/loads", s.handleListLoads)
			r.With(RequireRole(domain.RoleShipper)).
				Get("/loads/mine", s.handleListMyLoads)

			// Re-fetch tier.
			r.Group(func(r chi.Router) {
				r.Use(requireAccount)

				r.Patch("/account/me", s.handleUpdateMe)

				r.With(RequireRole(domain.RoleAdmin)).Get("/users", s.handleListUsers)
				r.With(RequireRole(domain.RoleAdmin)).Put("/users/{id}/role", s.handleChangeRole)

				r.With(RequireRole(domain.RoleAdmin, domain.RoleDispatcher)).
					Post("/fleet", s.handleCreateFleet)
				r.With(RequireRole(domain.RoleAdmin, domain.RoleDispatcher)).
					Put("/fleet/driver/{id}", s.handleAddDriver)
				r.With(RequireRole(domain.RoleAdmin, domain.RoleDispatcher)).
					Put("/fleet/driver/{id}/remove", s.handleRemoveDriver)
				r.Get("/fleet/mine", s.handleMyFleet)
				r.With(RequireRole(domain.RoleAdmin)).Get("/fleet", s.handleListFleets)

				r.With(RequireRole(domain.RoleShipper)).Post("/loads", s.handlePostLoad)
				r.With(RequireRole(domain.RoleDispatcher, domain.RoleAdmin)).
					Patch("/loads/{id}/status", s.handleUpdateLoadStatus)
				r.With(RequireRole(domain.RoleShipper, domain.RoleAdmin)).
					Delete("/loads/{id}", s.handleDeleteLoad)
			})
		})
	})

	return r
}

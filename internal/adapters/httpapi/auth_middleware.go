package httpapi

import (
	"net/http"
	"strings"

	"github.com/scc-freight/freight-api/internal/app/accounts"
	"github.com/scc-freight/freight-api/internal/domain"
	"github.com/scc-freight/freight-api/internal/platform/auth/token"
)

// NewAuthMiddleware enforces Authorization: Bearer <JWT> and stores the
// token's principal in request context.
//
// This is the claims-trusting tier: the role inside the token is used as-is
// without a database round trip. Routes that must observe live role or
// verification changes add RequireAccount on top.
func NewAuthMiddleware(verifier *token.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal())))
		})
	}
}

// NewRequireAccount re-fetches the live user record and refreshes the
// principal's role from it, so revoked accounts and role downgrades take
// effect immediately instead of at token expiry.
func NewRequireAccount(svc *accounts.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing principal", nil)
				return
			}
			u, err := svc.GetAccount(r.Context(), p.UserID)
			if err != nil {
				// The account behind a valid token is gone.
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "account no longer exists", nil)
				return
			}
			if !u.Active {
				writeError(w, r, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled", nil)
				return
			}
			live := domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), live)))
		})
	}
}

// RequireRole gates a subtree to the given roles. It runs after the auth
// middleware; reaching it without a principal is a wiring bug.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := MustPrincipal(r.Context())
			if _, ok := allowed[p.Role]; !ok {
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "role is not allowed to perform this action", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

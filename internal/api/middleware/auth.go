package middleware

import (
	"context"
	"net/http"

	"github.com/eventforge/server/internal/api/problem"
	"github.com/eventforge/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "claims"

// Authenticate validates the bearer token and stores the claims in the
// request context. Requests without a valid token are rejected.
func Authenticate(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", err, env)
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Invalid or expired token", err, env)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles gates a route group to callers holding one of the allowed
// roles. Must run after Authenticate.
func RequireRoles(env string, allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized,
					"Authentication required", auth.ErrMissingToken, env)
				return
			}

			if !auth.HasRole(claims.Role, allowed...) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden,
					"Insufficient permissions", nil, env,
					problem.WithDetail("this operation requires a different role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Claims returns the authenticated caller's claims, or nil for anonymous
// requests.
func Claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

package middleware

import "net/http"

// RequireRole returns middleware that checks if the authenticated user has
// one of the allowed coarse roles. It must be chained after Auth, which
// stores the role in the request context via ContextKeyUserRole.
//
// Returns 401 when no role is in context, 403 when the role does not match.
// Fine-grained custom-role permissions are display-only and not checked here.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				unauthorized(w)
				return
			}

			if _, match := allowed[role]; !match {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":"insufficient permissions"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

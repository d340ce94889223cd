package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequireCompany rejects sessions that carry no company scope. Every
// tenant-scoped route sits behind it.
func RequireCompany() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid, ok := CompanyIDFromContext(r.Context())
			if !ok || cid == uuid.Nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":"valid company scope required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

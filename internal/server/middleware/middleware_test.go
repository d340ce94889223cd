package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendloop/sendloop/internal/auth"
	"github.com/sendloop/sendloop/internal/server/middleware"
)

const testSecret = "middleware-test-secret"

func okHandler(onCall func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onCall != nil {
			onCall(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth(t *testing.T) {
	t.Parallel()

	cid, uid := uuid.New(), uuid.New()
	token, err := auth.IssueSessionToken(testSecret, cid, uid, "admin", time.Hour)
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()

		var seen bool
		h := middleware.Auth(testSecret)(okHandler(func(r *http.Request) {
			seen = true
			gotCID, ok := middleware.CompanyIDFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, cid, gotCID)

			gotUID, ok := middleware.UserIDFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, uid, gotUID)

			role, ok := middleware.RoleFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "admin", role)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, seen)
	})

	t.Run("bearer_fallback", func(t *testing.T) {
		t.Parallel()

		h := middleware.Auth(testSecret)(okHandler(nil))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing_credential", func(t *testing.T) {
		t.Parallel()

		h := middleware.Auth(testSecret)(okHandler(func(*http.Request) {
			t.Fatal("handler must not run")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"missing or invalid session"}`, rec.Body.String())
	})

	t.Run("wrong_secret", func(t *testing.T) {
		t.Parallel()

		forged, err := auth.IssueSessionToken("other-secret", cid, uid, "admin", time.Hour)
		require.NoError(t, err)

		h := middleware.Auth(testSecret)(okHandler(nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: forged})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired_token", func(t *testing.T) {
		t.Parallel()

		stale, err := auth.IssueSessionToken(testSecret, cid, uid, "admin", -time.Minute)
		require.NoError(t, err)

		h := middleware.Auth(testSecret)(okHandler(nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: stale})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestEngineKey(t *testing.T) {
	t.Parallel()

	t.Run("matching_key", func(t *testing.T) {
		t.Parallel()

		h := middleware.EngineKey("engine-secret")(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Engine-Key", "engine-secret")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong_key", func(t *testing.T) {
		t.Parallel()

		h := middleware.EngineKey("engine-secret")(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Engine-Key", "guess")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty_configured_key_disables_route", func(t *testing.T) {
		t.Parallel()

		h := middleware.EngineKey("")(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Engine-Key", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	withRole := func(role string) context.Context {
		return context.WithValue(context.Background(), middleware.ContextKeyUserRole, role)
	}

	t.Run("allowed_role", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireRole("owner", "admin")(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(withRole("admin"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed_role", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireRole("owner", "admin")(okHandler(nil))

		req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(withRole("agent"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"insufficient permissions"}`, rec.Body.String())
	})

	t.Run("no_role_in_context", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireRole("owner")(okHandler(nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireCompany(t *testing.T) {
	t.Parallel()

	t.Run("company_in_context", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireCompany()(okHandler(nil))

		ctx := context.WithValue(context.Background(), middleware.ContextKeyCompanyID, uuid.New())
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing_company", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireCompany()(okHandler(nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("nil_company", func(t *testing.T) {
		t.Parallel()

		h := middleware.RequireCompany()(okHandler(nil))

		ctx := context.WithValue(context.Background(), middleware.ContextKeyCompanyID, uuid.Nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("burst_then_reject", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := middleware.RateLimit(ctx, 0.001, 2)(okHandler(nil))
		reqCtx := context.WithValue(context.Background(), middleware.ContextKeyCompanyID, uuid.New())

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(reqCtx))
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(reqCtx))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded"}`, rec.Body.String())
	})

	t.Run("companies_limited_independently", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := middleware.RateLimit(ctx, 0.001, 1)(okHandler(nil))

		first := context.WithValue(context.Background(), middleware.ContextKeyCompanyID, uuid.New())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(first))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(first))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		second := context.WithValue(context.Background(), middleware.ContextKeyCompanyID, uuid.New())
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(second))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no_company_skips_limiting", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h := middleware.RateLimit(ctx, 0.001, 1)(okHandler(nil))

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

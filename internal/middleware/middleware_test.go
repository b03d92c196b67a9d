package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/middleware"
	"github.com/soma-campus/soma-backend/internal/utils"
)

// mockVerifier implements middleware.SessionVerifier without any database dependency.
type mockVerifier struct {
	userID string
	err    error
	seen   string
}

func (m *mockVerifier) SessionUserID(_ context.Context, token string) (string, error) {
	m.seen = token
	return m.userID, m.err
}

// call wraps an inner handler that echoes the user id from context.
func call(t *testing.T, mw func(http.Handler) http.Handler, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := utils.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(id))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	mw := middleware.SessionMiddleware(&mockVerifier{}, zap.NewNop())

	rec := call(t, mw, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_CookieToken(t *testing.T) {
	v := &mockVerifier{userID: "user-1"}
	mw := middleware.SessionMiddleware(v, zap.NewNop())

	rec := call(t, mw, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if v.seen != "cookie-token" {
		t.Errorf("expected cookie to win, verifier saw %q", v.seen)
	}
	if rec.Body.String() != "user-1" {
		t.Errorf("expected user id in context, got %q", rec.Body.String())
	}
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	v := &mockVerifier{userID: "user-2"}
	mw := middleware.SessionMiddleware(v, zap.NewNop())

	rec := call(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer header-token")
	})

	if rec.Code != http.StatusOK || v.seen != "header-token" {
		t.Errorf("expected bearer token to authenticate, got %d / %q", rec.Code, v.seen)
	}
}

func TestSessionMiddleware_ExpiredToken(t *testing.T) {
	v := &mockVerifier{err: apperr.Unauthorized("Token has expired")}
	mw := middleware.SessionMiddleware(v, zap.NewNop())

	rec := call(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer stale")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token has expired") {
		t.Errorf("expected body to mention expiry, got %q", rec.Body.String())
	}
}

func TestSessionMiddleware_DeletedUser(t *testing.T) {
	v := &mockVerifier{err: apperr.NotFound("User not found")}
	mw := middleware.SessionMiddleware(v, zap.NewNop())

	rec := call(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer orphan")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a token whose user is gone, got %d", rec.Code)
	}
}

func TestCORS_AllowList(t *testing.T) {
	mw := middleware.CORS([]string{"https://soma.example"})

	rec := call(t, mw, func(r *http.Request) {
		r.Header.Set("Origin", "https://soma.example")
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://soma.example" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}

	rec = call(t, mw, func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example")
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}

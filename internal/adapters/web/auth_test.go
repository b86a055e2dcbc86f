package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"optics-backoffice/internal/app"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, secret string, userID, storeID int, expiry time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID:  userID,
		StoreID: storeID,
		Role:    "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRequireAuth(t *testing.T) {
	h := &Handler{jwtSecret: "test-secret"}

	var gotSession app.Session
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotSession, _ = sessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := h.RequireAuth(next)

	t.Run("MissingToken", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/lenses", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if called {
			t.Error("handler should not run without a token")
		}

		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if body.Code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED code, got %s", body.Code)
		}
	})

	t.Run("GarbageToken", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/lenses", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "not-a-jwt"})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if called {
			t.Error("handler should not run with a garbage token")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		called = false
		token := signTestToken(t, "other-secret", 1, 1, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/api/lenses", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		called = false
		token := signTestToken(t, "test-secret", 1, 1, -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/api/lenses", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("ValidTokenInjectsSession", func(t *testing.T) {
		called = false
		token := signTestToken(t, "test-secret", 7, 3, time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/api/lenses", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !called {
			t.Fatal("handler did not run")
		}
		if gotSession.UserID != 7 || gotSession.StoreID != 3 || gotSession.Role != "staff" {
			t.Errorf("unexpected session %+v", gotSession)
		}
	})
}

func TestRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RequestID(next)

	t.Run("GeneratesWhenAbsent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected generated request ID header")
		}
	})

	t.Run("KeepsSafeCallerID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("expected caller ID kept, got %s", got)
		}
	})

	t.Run("ReplacesUnsafeCallerID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "bad id with spaces!")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got == "bad id with spaces!" || got == "" {
			t.Errorf("expected replacement ID, got %q", got)
		}
	})
}

func TestRequestBodyLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var v map[string]any
		if !decodeJSON(w, r, &v) {
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	wrapped := RequestBodyLimit(16)(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	// Empty body is a decode error, not a size error.
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", rec.Code)
	}
}

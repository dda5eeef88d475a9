package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authHandler(t *testing.T) (http.Handler, string) {
	t.Helper()
	store := NewAPIKeyStore(testDB(t))
	raw, _, err := store.Create("test", "juan@sauma.cl")
	if err != nil {
		t.Fatalf("create key: %v", err)
	}

	var gotEmail string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = EmailFromContext(r.Context())
		fmt.Fprintf(w, "email=%s", gotEmail)
	})
	return RequireAPIKey(store, inner), raw
}

func TestRequireAPIKeyPassesNonAPIRoutes(t *testing.T) {
	handler, _ := authHandler(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for non-API route without auth", w.Code)
	}
}

func TestRequireAPIKeyMissingHeader(t *testing.T) {
	handler, _ := authHandler(t)

	req := httptest.NewRequest("GET", "/api/properties", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAPIKeyInvalidKey(t *testing.T) {
	handler, _ := authHandler(t)

	req := httptest.NewRequest("GET", "/api/properties", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("Authorization", "Bearer pt_wrong")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAPIKeyValid(t *testing.T) {
	handler, raw := authHandler(t)

	req := httptest.NewRequest("GET", "/api/properties", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	req.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if got := w.Body.String(); got != "email=juan@sauma.cl" {
		t.Errorf("body = %q, want the key's email attached to the context", got)
	}
}

func TestRequireAPIKeyRateLimits(t *testing.T) {
	handler, _ := authHandler(t)

	var last int
	for i := 0; i < rateLimitMaxFail+1; i++ {
		req := httptest.NewRequest("GET", "/api/properties", nil)
		req.RemoteAddr = "10.9.9.9:1234"
		req.Header.Set("Authorization", "Bearer pt_wrong")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		last = w.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("status after repeated failures = %d, want 429", last)
	}
}

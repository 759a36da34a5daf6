package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareExtractsSubject(t *testing.T) {
	m := NewMiddleware("X-User-Subject")

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Subject", "alice")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if seen != "alice" {
		t.Fatalf("UserID = %q, want alice", seen)
	}
}

func TestMiddlewareRejectsMissingSubject(t *testing.T) {
	m := NewMiddleware("X-User-Subject")

	called := false
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if called {
		t.Fatal("handler must not run without a subject")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "unauthorized" {
		t.Fatalf("error = %q, want unauthorized", body.Error)
	}
}

func TestMiddlewareCustomHeader(t *testing.T) {
	m := NewMiddleware("X-Auth-Subject")

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Subject", "alice") // wrong header
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for wrong header", rr.Code)
	}
}

func TestUserIDWithoutMiddleware(t *testing.T) {
	if got := UserID(context.Background()); got != "" {
		t.Fatalf("UserID on bare context = %q, want empty", got)
	}
	ctx := WithUserID(context.Background(), "bob")
	if got := UserID(ctx); got != "bob" {
		t.Fatalf("UserID = %q, want bob", got)
	}
}

package webui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewTokenAuth_RejectsEmptyToken(t *testing.T) {
	_, err := NewTokenAuth("")
	if !errors.Is(err, ErrEmptyToken) {
		t.Errorf("error = %v, want ErrEmptyToken", err)
	}
}

func TestTokenAuth_Check(t *testing.T) {
	auth, err := NewTokenAuth("correct-horse")
	if err != nil {
		t.Fatalf("NewTokenAuth() error = %v", err)
	}

	if !auth.Check("correct-horse") {
		t.Error("correct token rejected")
	}
	if auth.Check("battery-staple") {
		t.Error("wrong token accepted")
	}
	if auth.Check("") {
		t.Error("empty token accepted")
	}
}

func TestTokenAuth_Middleware(t *testing.T) {
	auth, err := NewTokenAuth("secret")
	if err != nil {
		t.Fatalf("NewTokenAuth() error = %v", err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer secret", http.StatusOK},
		{"case-insensitive scheme", "bearer secret", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic c2VjcmV0", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 response missing WWW-Authenticate header")
			}
		})
	}
}

func TestTokenAuth_NilDisablesAuth(t *testing.T) {
	var auth *TokenAuth
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

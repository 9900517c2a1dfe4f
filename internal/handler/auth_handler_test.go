package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkforge-server/internal/domain"
)

func TestAuthHandler_GetProfile(t *testing.T) {
	h := NewAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	h.GetProfile(rec, withAuthContext(req, &domain.SupabaseUser{ID: "user-1", Email: "writer@example.com"}, "token"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var user domain.SupabaseUser
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if user.Email != "writer@example.com" {
		t.Fatalf("expected profile email, got %q", user.Email)
	}
}

func TestAuthHandler_GetProfile_NoUser(t *testing.T) {
	h := NewAuthHandler()

	rec := httptest.NewRecorder()
	h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ValidateToken(t *testing.T) {
	h := NewAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/validate", nil)
	rec := httptest.NewRecorder()
	h.ValidateToken(rec, withAuthContext(req, &domain.SupabaseUser{ID: "user-1"}, "token"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Valid {
		t.Fatalf("expected valid true")
	}
}

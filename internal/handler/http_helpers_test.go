package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkforge-server/internal/domain"

	apperrors "inkforge-server/pkg/errors"
)

func TestToAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"quota exceeded", domain.ErrQuotaExceeded, http.StatusForbidden},
		{"wrapped quota", fmt.Errorf("gate: %w", domain.ErrQuotaExceeded), http.StatusForbidden},
		{"story not found", domain.ErrStoryNotFound, http.StatusNotFound},
		{"chapter not found", domain.ErrChapterNotFound, http.StatusNotFound},
		{"engine timeout", fmt.Errorf("%w: dial", domain.ErrEngineTimeout), http.StatusGatewayTimeout},
		{"engine unavailable", fmt.Errorf("%w: refused", domain.ErrEngineUnavailable), http.StatusServiceUnavailable},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized},
		{"validation", &domain.ValidationError{Field: "title", Message: "cannot be empty"}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toAppError(tt.err).StatusCode; got != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestToAppError_PassesThroughAppError(t *testing.T) {
	orig := apperrors.NewQuotaError("Daily free limit reached.")
	if got := toAppError(orig); got != orig {
		t.Fatalf("expected AppError passed through unchanged")
	}
}

func TestWriteServiceError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, domain.ErrQuotaExceeded)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type, got %q", got)
	}
	if body := rec.Body.String(); body != `{"error":"Daily free limit reached."}` {
		t.Fatalf("unexpected body %q", body)
	}
}

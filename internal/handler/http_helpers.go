package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"inkforge-server/internal/domain"

	apperrors "inkforge-server/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// requireAuth extracts the authenticated user and token, writing a 401 when
// either is missing from the request context.
func requireAuth(w http.ResponseWriter, r *http.Request) (*domain.SupabaseUser, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return nil, "", false
	}
	token, ok := GetTokenFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Token not found in context")
		return nil, "", false
	}
	return user, token, true
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service-layer error onto its HTTP status and a
// caller-safe message. Internal detail stays in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	writeError(w, appErr.StatusCode, appErr.Message)
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return apperrors.NewValidationError(validationErr.Error())
	}

	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return apperrors.NewQuotaError("Daily free limit reached.")
	case errors.Is(err, domain.ErrStoryNotFound):
		return apperrors.NewNotFoundError("Story not found")
	case errors.Is(err, domain.ErrChapterNotFound):
		return apperrors.NewNotFoundError("Chapter not found")
	case errors.Is(err, domain.ErrEngineTimeout):
		return apperrors.NewTimeoutError("Model took too long to respond.", err)
	case errors.Is(err, domain.ErrEngineUnavailable):
		return apperrors.NewUnavailableError("Cannot connect to AI engine.", err)
	case errors.Is(err, domain.ErrInvalidToken):
		return apperrors.NewUnauthorizedError("Invalid token")
	default:
		return apperrors.NewInternalError("Internal server error", err)
	}
}

package domain

import "errors"

// Domain errors
var (
	ErrQuotaExceeded     = errors.New("daily free limit reached")
	ErrEngineTimeout     = errors.New("generation engine took too long to respond")
	ErrEngineUnavailable = errors.New("cannot connect to generation engine")
	ErrStoryNotFound     = errors.New("story not found")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrUsageNotFound     = errors.New("usage record not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidPayload    = errors.New("invalid webhook payload")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

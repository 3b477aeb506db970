package httpx

import (
	"errors"
	"net/http"

	"github.com/K-nass/task-management/internal/shared"
)

// StatusFor maps the shared error taxonomy onto HTTP status codes.
// Ownership failures reuse 401 to stay compatible with existing clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrTooManyAttempts):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as {"message": ...} with the mapped status.
func RespondError(w http.ResponseWriter, err error) {
	Message(w, StatusFor(err), shared.UserMessage(err))
}

package httputil

import (
	"errors"
	"log"
	"net/http"

	"minisocial/internal/model"
)

// WriteServiceError maps a service error to its HTTP status by error kind.
// Unclassified errors are logged with op and hidden behind fallback.
func WriteServiceError(w http.ResponseWriter, op string, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		WriteValidationError(w, err.Error())
	case errors.Is(err, model.ErrInvalidOperation):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidOperation, err.Error())
	case errors.Is(err, model.ErrUnauthenticated):
		WriteUnauthorized(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		WriteConflict(w, err.Error())
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		WriteInternalError(w, fallback)
	}
}

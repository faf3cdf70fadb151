package httpx

import (
	"errors"
	"net/http"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Transport level errors.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to HTTP responses. Unknown errors become a
// generic 500 so no internal detail reaches the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, shared.ErrInvalidRole):
		Fail(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, shared.ErrAccessDenied), errors.Is(err, shared.ErrMissingCallerID):
		Fail(w, http.StatusForbidden, "access denied")
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}

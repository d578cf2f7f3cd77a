package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/album-catalog/internal/album"
	"github.com/nerrad567/album-catalog/internal/auth"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeUsernameTaken   = "username_taken"
	ErrCodeRoleNotAllowed  = "role_not_allowed"
	ErrCodePayloadTooLarge = "payload_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a domain error to its HTTP status. Anything
// unrecognised is logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeUnauthorized(w, "authentication required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, err.Error())
	case errors.Is(err, album.ErrAlbumNotFound), errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, auth.ErrUsernameExists):
		writeError(w, http.StatusBadRequest, ErrCodeUsernameTaken, err.Error())
	case errors.Is(err, auth.ErrRoleNotAllowed):
		writeError(w, http.StatusBadRequest, ErrCodeRoleNotAllowed, err.Error())
	case errors.Is(err, album.ErrInvalidAlbum),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrSelfModification):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error(op+" failed",
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		writeInternalError(w, op+" failed")
	}
}

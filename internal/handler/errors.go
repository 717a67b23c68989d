package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/fanblog/internal/domain"
)

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "tag not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure.
// The message is extracted from the wrapped domain.ErrValidation error.
func validationBody(err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: unwrapMessage(err)}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "bad_request", Message: message}}
}

// titleBody returns the ErrorResponse for a rejected taxonomy title. The
// message is shown to the user as-is, next to the title input.
func titleBody(err *domain.TitleError) ErrorResponse {
	code := "validation_error"
	if errors.Is(err.Kind, domain.ErrDuplicateTitle) {
		code = "duplicate_title"
	}
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Message}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.PostService.Create: validation error: title is required" → "title is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const prefix = "validation error: "
	if i := strings.LastIndex(msg, prefix); i >= 0 && len(msg) > i+len(prefix) {
		return msg[i+len(prefix):]
	}
	return msg
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto a status code and error body.
// notFound is the message used for domain.ErrNotFound.
// Anything unrecognized is logged and answered with 500 so internal details
// (SQL errors, slug collision exhaustion) never reach the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var titleErr *domain.TitleError
	switch {
	case errors.As(err, &titleErr):
		status := http.StatusUnprocessableEntity
		if errors.Is(titleErr.Kind, domain.ErrDuplicateTitle) {
			status = http.StatusConflict
		}
		writeJSON(w, status, titleBody(titleErr))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFound))
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorDetail{Code: "conflict", Message: "resource already exists"}})
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// decodeBody decodes a JSON request body into dst. On failure it writes the
// response itself and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{Code: "request_too_large", Message: "request body too large"}})
			return false
		}
		writeJSON(w, http.StatusBadRequest, requestBody("request body must be valid JSON"))
		return false
	}
	return true
}

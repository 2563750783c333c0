package response

import (
	"encoding/json"
	"net/http"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/pkg/logger"
)

// JSON writes v with the given status. A nil v writes no body.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps an application error to its HTTP status and writes
// {"error": message}. Unknown errors become 500 with a generic message.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		status, msg = http.StatusBadRequest, apperr.MessageOf(err)
	case apperr.KindUnauthorized:
		status, msg = http.StatusUnauthorized, apperr.MessageOf(err)
	case apperr.KindForbidden:
		status, msg = http.StatusForbidden, apperr.MessageOf(err)
	case apperr.KindNotFound:
		status, msg = http.StatusNotFound, apperr.MessageOf(err)
	case apperr.KindConflict:
		status, msg = http.StatusConflict, apperr.MessageOf(err)
	default:
		logger.Error("internal error", "error", err)
	}

	JSON(w, status, errorBody{Error: msg})
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusUnauthorized, errorBody{Error: msg})
}

// Forbidden writes a 403 with the given message.
func Forbidden(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusForbidden, errorBody{Error: msg})
}

// TooManyRequests writes a 429 with a Retry-After header.
func TooManyRequests(w http.ResponseWriter, retryAfter string) {
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	JSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
}

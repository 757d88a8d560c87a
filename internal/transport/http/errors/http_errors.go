package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/wybmv/backend/internal/services/apperr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

type classification struct {
	sentinel error
	status   int
	code     string
}

var classes = []classification{
	{sentinel: apperr.ErrInvalidInput, status: http.StatusBadRequest, code: "INVALID_INPUT"},
	{sentinel: apperr.ErrUnauthenticated, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
	{sentinel: apperr.ErrForbidden, status: http.StatusForbidden, code: "FORBIDDEN"},
	{sentinel: apperr.ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
	{sentinel: apperr.ErrConflict, status: http.StatusConflict, code: "CONFLICT"},
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps the service error taxonomy onto HTTP statuses. Anything unclassified is
// answered as a 500 with internalMessage, never with the underlying error text.
func WriteError(w http.ResponseWriter, err error, internalMessage string) {
	var rateErr *apperr.RateLimitError
	if stderrors.As(err, &rateErr) {
		retryAfter := rateErr.RetryAfterSec
		if retryAfter < 1 {
			retryAfter = 1
		}
		Write(w, http.StatusTooManyRequests, RateLimitError{
			Code:          "TOO_FAST",
			Message:       "too many actions, slow down",
			RetryAfterSec: retryAfter,
		})
		return
	}

	for _, class := range classes {
		if stderrors.Is(err, class.sentinel) {
			Write(w, class.status, APIError{
				Code:    class.code,
				Message: publicMessage(err, class.sentinel),
			})
			return
		}
	}

	Write(w, http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: internalMessage})
}

func publicMessage(err, sentinel error) string {
	msg := err.Error()
	trimmed := strings.TrimPrefix(msg, sentinel.Error()+": ")
	if trimmed == "" {
		return msg
	}
	return trimmed
}

// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler converts pipeline errors into JSON HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the wire shape of every error the API returns. Extra
// carries step output that must survive the error (e.g. an APPROVE decision
// whose letter failed to render).
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

// WriteError normalizes err and writes it with the mapped status code.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, err error) {
	h.WriteErrorWithExtra(w, err, nil)
}

// WriteErrorWithExtra writes err plus any payload that must not be lost.
func (h *ErrorHandler) WriteErrorWithExtra(w http.ResponseWriter, err error, extra map[string]interface{}) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
	})

	resp := ErrorResponse{
		Error:   string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
		Extra:   extra,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(stdErr.Code))
	_ = json.NewEncoder(w).Encode(resp)
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

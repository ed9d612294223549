// internal/common/errors/errors.go
// Package errors provides standardized error handling for the loan pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest          ErrorCode = "INVALID_REQUEST"
	ErrCodeProfileNotFound         ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileStoreUnavailable ErrorCode = "PROFILE_STORE_UNAVAILABLE"

	ErrCodeKycCheckFailed      ErrorCode = "KYC_CHECK_FAILED"
	ErrCodeUnderwritingFailed  ErrorCode = "UNDERWRITING_FAILED"
	ErrCodePdfGenerationFailed ErrorCode = "PDF_GENERATION_FAILED"
	ErrCodeDocumentNotFound    ErrorCode = "DOCUMENT_NOT_FOUND"

	ErrCodeSinkAppendFailed       ErrorCode = "SINK_APPEND_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError rejects bad input before any side effect.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError marks a customer with no CRM record. Distinct from
// a KYC FAIL: different failure point, different caller action.
func NewProfileNotFoundError(customerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Customer record not found",
		Details:   fmt.Sprintf("customerId: %s", customerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileStoreUnavailableError creates a retryable store error.
func NewProfileStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileStoreUnavailable,
		Message:   "Customer store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewKycCheckFailedError marks an internal fault inside the KYC validator,
// not a FAIL result (a FAIL result is a normal short-circuit outcome).
func NewKycCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKycCheckFailed,
		Message:   "KYC check faulted",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnderwritingFailedError wraps an unexpected fault while computing a
// decision. Looks retryable to the caller but is never auto-retried.
func NewUnderwritingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnderwritingFailed,
		Message:   "Underwriting failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPdfGenerationFailedError marks a render fault after APPROVE. The
// computed decision must still reach the caller.
func NewPdfGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePdfGenerationFailed,
		Message:   "Sanction letter generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentNotFoundError creates a non-retryable document lookup error.
func NewDocumentNotFoundError(filename string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentNotFound,
		Message:   "Document not found",
		Details:   fmt.Sprintf("filename: %s", filename),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSinkAppendFailedError is recorded and swallowed: sink writes are
// best-effort and never abort the pipeline.
func NewSinkAppendFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSinkAppendFailed,
		Message:   "Sink append failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a swallowed notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything that escaped the typed taxonomy.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidRequest:          http.StatusBadRequest,
	ErrCodeProfileNotFound:         http.StatusNotFound,
	ErrCodeProfileStoreUnavailable: http.StatusInternalServerError,
	ErrCodeKycCheckFailed:          http.StatusInternalServerError,
	ErrCodeUnderwritingFailed:      http.StatusBadGateway,
	ErrCodePdfGenerationFailed:     http.StatusInternalServerError,
	ErrCodeDocumentNotFound:        http.StatusNotFound,
	ErrCodeInternal:                http.StatusInternalServerError,
}

// HTTPStatus returns the status for a code, defaulting to 500.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

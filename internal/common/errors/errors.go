// Package errors provides standardized error handling for the bursary portal.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFieldValidationFailed ErrorCode = "FIELD_VALIDATION_FAILED"
	ErrCodeStepIncomplete        ErrorCode = "STEP_INCOMPLETE"
	ErrCodeStepLocked            ErrorCode = "STEP_LOCKED"

	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"
	ErrCodeAlreadySubmitted     ErrorCode = "ALREADY_SUBMITTED"

	ErrCodeNetworkError        ErrorCode = "NETWORK_ERROR"
	ErrCodeRequestTimeout      ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeAuthenticationError ErrorCode = "AUTHENTICATION_ERROR"

	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	ErrCodeConfirmationRequired ErrorCode = "CONFIRMATION_REQUIRED"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeSessionNotFound      ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// GenericSubmitMessage is shown when the backend gives no usable reason.
const GenericSubmitMessage = "Failed to submit application. Please try again."

// genericMessage is shown for anything that is not a StandardError.
const genericMessage = "Something went wrong. Please try again."

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

// WithMetadata attaches a key/value and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFieldValidationError carries the full field error map in Metadata["errors"].
func NewFieldValidationError(message string, fieldErrors map[string]string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldValidationFailed,
		Message:   message,
		Retryable: false,
		Metadata:  map[string]interface{}{"errors": fieldErrors},
		Timestamp: time.Now().UTC(),
	}
}

// NewStepIncompleteError blocks advancement or submission.
func NewStepIncompleteError(stepName string, fieldErrors map[string]string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepIncomplete,
		Message:   fmt.Sprintf("Please complete the %s step before continuing", stepName),
		Details:   fmt.Sprintf("%d field(s) failed validation", len(fieldErrors)),
		Retryable: false,
		Metadata: map[string]interface{}{
			"step":   stepName,
			"errors": fieldErrors,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewStepLockedError rejects a forward jump past an incomplete step.
func NewStepLockedError(stepName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepLocked,
		Message:   fmt.Sprintf("Please complete the %s step first", stepName),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": stepName},
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError keeps the server-provided message when there is one.
func NewSubmissionFailedError(serverMessage string, status int) *StandardError {
	msg := strings.TrimSpace(serverMessage)
	if msg == "" {
		msg = GenericSubmitMessage
	}
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   msg,
		Details:   fmt.Sprintf("status: %d", status),
		Retryable: true,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Message:   "Your application is already being submitted",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySubmittedError blocks a second submit until the form is cleared.
func NewAlreadySubmittedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySubmitted,
		Message:   "Your application has already been submitted",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNetworkError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   "Network error. Please check your connection and try again.",
		Details:   fmt.Sprintf("service: %s, error: %s", service, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestTimeout,
		Message:   "Request timeout. Please try again.",
		Details:   fmt.Sprintf("service: %s, error: %s", service, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationError,
		Message:   "Authentication failed. Please log in again.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError is logged only, never shown to applicants.
func NewPersistenceFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Draft storage error",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfirmationRequiredError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfirmationRequired,
		Message:   fmt.Sprintf("Please confirm before you %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found or expired",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandard unwraps err to a StandardError if one is in the chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request", err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   genericMessage,
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// UserMessage returns the text that may be shown to an applicant.
// Unknown errors are coerced to a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if stdErr, ok := AsStandard(err); ok && stdErr.Message != "" {
		return stdErr.Message
	}
	return genericMessage
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeSubmissionFailed, ErrCodeNetworkError, ErrCodeRequestTimeout, ErrCodePersistenceFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "STEP"):
		return "NAVIGATION"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "NETWORK") || strings.Contains(codeStr, "TIMEOUT"):
		return "NETWORK"
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "CONFIRMATION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}

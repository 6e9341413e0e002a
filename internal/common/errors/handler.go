// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler turns errors into JSON responses with standardized logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// HandleHTTPError writes err to w. Details stay in the log.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, stdErr, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:      stdErr.Code,
		Message:   UserMessage(stdErr),
		Retryable: stdErr.Retryable,
		Metadata:  stdErr.Metadata,
	})
}

// HTTPStatus maps an error code to a response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeFieldValidationFailed, ErrCodeStepIncomplete, ErrCodeInvalidInput:
		return http.StatusUnprocessableEntity
	case ErrCodeStepLocked, ErrCodeSubmissionInProgress, ErrCodeAlreadySubmitted:
		return http.StatusConflict
	case ErrCodeConfirmationRequired:
		return http.StatusPreconditionRequired
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeAuthenticationError:
		return http.StatusUnauthorized
	case ErrCodeSubmissionFailed, ErrCodeNetworkError:
		return http.StatusBadGateway
	case ErrCodeRequestTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	}
	if r != nil {
		fields["method"] = r.Method
		fields["path"] = r.URL.Path
	}
	h.logger.Error("Request failed", fields)
}

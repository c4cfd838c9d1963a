// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorHandler normalizes failures into StandardError values and writes
// them as JSON HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteHTTPError logs the failure and responds with the standardized error
// body. Retryable errors map to 503 so clients know a retry may succeed;
// validation errors map to 400; everything else is a 500.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, requestID string, err error) {
	stdErr := h.normalizeError(err)
	h.logError(requestID, stdErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusFor(stdErr))

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     stdErr,
		"requestId": requestID,
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func httpStatusFor(stdErr *StandardError) int {
	switch {
	case stdErr.Code == ErrCodeInvalidMessage:
		return http.StatusBadRequest
	case stdErr.Retryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) logError(requestID string, stdErr *StandardError) {
	h.logger.Error("Request failed", map[string]interface{}{
		"requestId": requestID,
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"details":   stdErr.Details,
	})
}

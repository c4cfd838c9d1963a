// Package errors provides standardized error handling across the dialogue
// engine and its collaborators.
package errors

import (
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
	ErrCodeDataFetchFailed  ErrorCode = "DATA_FETCH_FAILED"
	ErrCodeDataFetchTimeout ErrorCode = "DATA_FETCH_TIMEOUT"

	ErrCodeContextLoadFailed ErrorCode = "CONTEXT_LOAD_FAILED"
	ErrCodeContextSaveFailed ErrorCode = "CONTEXT_SAVE_FAILED"

	ErrCodeHistoryWriteFailed ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeHistoryReadFailed  ErrorCode = "HISTORY_READ_FAILED"

	ErrCodeSymbolsLoadFailed ErrorCode = "SYMBOLS_LOAD_FAILED"

	ErrCodeInvalidMessage ErrorCode = "INVALID_MESSAGE"
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

// NewDataFetchFailedError creates a retryable market data error.
func NewDataFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataFetchFailed,
		Message:   "Market data API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDataFetchTimeoutError creates a retryable market data timeout error.
func NewDataFetchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeDataFetchTimeout,
		Message:   "Market data API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextLoadFailedError creates a retryable context store read error.
func NewContextLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextLoadFailed,
		Message:   "Conversation context load error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextSaveFailedError creates a retryable context store write error.
func NewContextSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextSaveFailed,
		Message:   "Conversation context save error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryWriteFailedError creates a retryable history insert error.
func NewHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Chat history insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryReadFailedError creates a retryable history query error.
func NewHistoryReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryReadFailed,
		Message:   "Chat history query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSymbolsLoadFailedError creates a retryable symbol directory error.
func NewSymbolsLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSymbolsLoadFailed,
		Message:   "Symbol directory load failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidMessageError creates a non-retryable request validation error.
func NewInvalidMessageError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidMessage,
		Message:   "Message validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataFetchFailed,
		ErrCodeContextLoadFailed,
		ErrCodeContextSaveFailed,
		ErrCodeHistoryWriteFailed,
		ErrCodeHistoryReadFailed,
		ErrCodeSymbolsLoadFailed:
		return 3

	case ErrCodeDataFetchTimeout:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATA_FETCH"):
		return "MARKET_DATA"
	case strings.Contains(codeStr, "CONTEXT"):
		return "CONTEXT"
	case strings.Contains(codeStr, "HISTORY"):
		return "HISTORY"
	case strings.Contains(codeStr, "SYMBOLS"):
		return "REFERENCE_DATA"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// internal/common/errors/errors.go

// Package errors provides standardized error handling for the intake pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Orchestration stage failures. None of these ever reach the end user;
	// they resolve to a dropped request and an operator-facing log entry.
	ErrCodeAdmissionTimeout ErrorCode = "ADMISSION_TIMEOUT"
	ErrCodeProviderFailure  ErrorCode = "PROVIDER_FAILURE"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeParseFailure     ErrorCode = "PARSE_FAILURE"

	// Storage failures.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeOrderSaveFailed          ErrorCode = "ORDER_SAVE_FAILED"
	ErrCodeRecordNotFound           ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeRecordInUse              ErrorCode = "RECORD_IN_USE"

	// Collaborator failures.
	ErrCodeSessionProxyFailed     ErrorCode = "SESSION_PROXY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// NewAdmissionTimeoutError marks a request that waited longer than the gate
// allows. Non-retryable: the conversation turn is simply dropped.
func NewAdmissionTimeoutError(userID string, waited time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdmissionTimeout,
		Message:   "Timed out waiting for an AI request slot",
		Details:   fmt.Sprintf("userId: %s, waited: %s", userID, waited),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderFailureError marks exhaustion of the whole provider chain.
func NewProviderFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderFailure,
		Message:   "All configured AI models failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError marks a rate-limit response from a single model. The
// chain still falls through to the next model; the distinct code exists for
// metrics and alerting.
func NewRateLimitedError(model string, statusCode int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Model rate limit reached",
		Details:   fmt.Sprintf("model: %s, status: %d", model, statusCode),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseFailureError marks undecodable or empty model output.
func NewParseFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseFailure,
		Message:   "Model output could not be parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderSaveFailedError creates a retryable persistence error.
func NewOrderSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderSaveFailed,
		Message:   "Service order could not be persisted",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable lookup error.
func NewRecordNotFoundError(entity string, id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Record not found",
		Details:   fmt.Sprintf("entity: %s, id: %d", entity, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordInUseError marks a delete blocked by a foreign-key reference.
func NewRecordInUseError(entity string, id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordInUse,
		Message:   "Record is referenced by existing service orders",
		Details:   fmt.Sprintf("entity: %s, id: %d", entity, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Dispatch notification failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Package errors provides standardized error handling for the loan
// processing workers and the BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input and validation errors. Non-retryable, rejected before any
	// calculation runs.
	ErrCodeInputInvalid    ErrorCode = "INPUT_INVALID"
	ErrCodeUnknownTool     ErrorCode = "UNKNOWN_TOOL"
	ErrCodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"

	// Degenerate numeric cases. Calculators never raise these; they return
	// explicit zero/FAIL results. The code exists so the API boundary can
	// name the condition when reporting.
	ErrCodeDegenerateCase ErrorCode = "DEGENERATE_CASE"

	// External collaborator errors. Retryable; the owning stage records a
	// PENDING/ERROR verdict and the pipeline continues.
	ErrCodeCompletionUnavailable ErrorCode = "COMPLETION_UNAVAILABLE"
	ErrCodeCompletionTimeout     ErrorCode = "COMPLETION_TIMEOUT"
	ErrCodeDocstoreUnavailable   ErrorCode = "DOCSTORE_UNAVAILABLE"
	ErrCodeStageTimeout          ErrorCode = "STAGE_TIMEOUT"

	// Generic infrastructure errors raised by the workflow engine client.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"

	// Persistence and delivery errors.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeResultStoreFailed        ErrorCode = "RESULT_STORE_FAILED"
	ErrCodeResultNotFound           ErrorCode = "RESULT_NOT_FOUND"
	ErrCodeAuditIndexFailed         ErrorCode = "AUDIT_INDEX_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// NewInputInvalidError creates a non-retryable input validation error.
func NewInputInvalidError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   "Invalid or missing input field",
		Details:   fmt.Sprintf("field: %s, %s", field, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownToolError creates a non-retryable unknown tool dispatch error.
func NewUnknownToolError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownTool,
		Message:   "Tool not registered",
		Details:   fmt.Sprintf("tool: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaViolationError creates a non-retryable tool argument schema error.
func NewSchemaViolationError(tool, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaViolation,
		Message:   "Tool arguments failed schema validation",
		Details:   fmt.Sprintf("tool: %s, %s", tool, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionUnavailableError creates a retryable completion collaborator error.
func NewCompletionUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionUnavailable,
		Message:   "Completion collaborator unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompletionTimeoutError creates a retryable completion timeout error.
func NewCompletionTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompletionTimeout,
		Message:   "Completion collaborator timed out",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocstoreUnavailableError creates a retryable document store error.
func NewDocstoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocstoreUnavailable,
		Message:   "Document store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageTimeoutError creates a retryable stage timeout error.
func NewStageTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageTimeout,
		Message:   "Stage exceeded its deadline",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError creates a retryable error for an external service failure.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error for an external operation.
func NewTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation %s timed out", operation),
		Details:   err.Error(),
		Retryable: true,
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

// NewResultStoreFailedError creates a retryable result persistence error.
func NewResultStoreFailedError(applicationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Failed to persist result record",
		Details:   fmt.Sprintf("applicationId: %s, error: %s", applicationID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotFoundError creates a non-retryable missing result error.
func NewResultNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotFound,
		Message:   "Result record not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit indexing error.
func NewAuditIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Failed to index audit report",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

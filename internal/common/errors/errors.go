// Package errors provides standardized error handling for the matching
// engine and its BPMN workflow integration.
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
	// Caller input errors: recoverable, surfaced so the UI can redirect the
	// student to fix their profile or request. Never retried.
	ErrCodeProfileIncomplete   ErrorCode = "PROFILE_INCOMPLETE"
	ErrCodeInvalidBudgetFormat ErrorCode = "INVALID_BUDGET_FORMAT"
	ErrCodeInvalidPagination   ErrorCode = "INVALID_PAGINATION"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"

	// Catalog data error: the offending program is logged and excluded,
	// the batch continues.
	ErrCodeDataIntegrity ErrorCode = "DATA_INTEGRITY"

	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProgramNotFound     ErrorCode = "PROGRAM_NOT_FOUND"
	ErrCodeProfileFetchFailed  ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeCatalogFetchFailed  ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogQueryTimeout ErrorCode = "CATALOG_QUERY_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error. Field names the
// offending input field where one exists, so callers can render precise
// feedback instead of parsing message strings.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Field     string                 `json:"field,omitempty"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

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

// ==========================
// 3. Error Constructors
// ==========================

// NewProfileIncompleteError creates a non-retryable error listing every
// missing profile field.
func NewProfileIncompleteError(missingFields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileIncomplete,
		Message:   "Student profile is incomplete",
		Details:   fmt.Sprintf("missing fields: %s", strings.Join(missingFields, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingFields": missingFields},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBudgetFormatError creates a non-retryable budget parse error.
func NewInvalidBudgetFormatError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidBudgetFormat,
		Message:   "Budget range is not parseable",
		Field:     "budgetRange",
		Details:   fmt.Sprintf("expected \"min-max\" or \"N+\", got %q", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPaginationError creates a non-retryable pagination error.
func NewInvalidPaginationError(page, pageSize int) *StandardError {
	field := "page"
	if pageSize <= 0 {
		field = "pageSize"
	}
	return &StandardError{
		Code:      ErrCodeInvalidPagination,
		Message:   "Pagination parameters are invalid",
		Field:     field,
		Details:   fmt.Sprintf("page: %d, pageSize: %d", page, pageSize),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable error for job variables that
// violate the activity's registered input schema.
func NewInvalidInputError(taskType string, violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input violates the activity input schema",
		Details:   fmt.Sprintf("task %s: %s", taskType, strings.Join(violations, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewDataIntegrityError creates a non-retryable error for a malformed
// program record. The caller logs it and excludes the program from the
// batch; it never aborts the whole request.
func NewDataIntegrityError(programID, field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataIntegrity,
		Message:   "Program record is malformed",
		Field:     field,
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"programId": programID},
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable profile lookup error.
func NewProfileNotFoundError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Student profile not found",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProgramNotFoundError creates a non-retryable program lookup error.
func NewProgramNotFoundError(programID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProgramNotFound,
		Message:   "Program not found in catalog",
		Details:   fmt.Sprintf("programId: %s", programID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileFetchFailedError creates a retryable profile store error.
func NewProfileFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileFetchFailed,
		Message:   "Database error while fetching profile",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable catalog provider error.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Error while fetching program catalog",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryTimeoutError creates a retryable catalog timeout error.
func NewCatalogQueryTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryTimeout,
		Message:   "Catalog query timeout",
		Details:   "catalog fetch exceeded timeout threshold",
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

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The codes
// are identical so process models can catch them by the same name.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileIncomplete:        "PROFILE_INCOMPLETE",
	ErrCodeInvalidBudgetFormat:      "INVALID_BUDGET_FORMAT",
	ErrCodeInvalidPagination:        "INVALID_PAGINATION",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeDataIntegrity:            "DATA_INTEGRITY",
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeProgramNotFound:          "PROGRAM_NOT_FOUND",
	ErrCodeProfileFetchFailed:       "PROFILE_FETCH_FAILED",
	ErrCodeCatalogFetchFailed:       "CATALOG_FETCH_FAILED",
	ErrCodeCatalogQueryTimeout:      "CATALOG_QUERY_TIMEOUT",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileFetchFailed,
		ErrCodeCatalogFetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeCatalogQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	errorVars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if stdErr.Field != "" {
		errorVars["field"] = stdErr.Field
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: errorVars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "PROGRAM"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "SEARCH"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "INTEGRITY"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

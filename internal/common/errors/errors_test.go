package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCode(t *testing.T) {
	err := NewProfileIncompleteError([]string{"gpa"})
	assert.True(t, IsCode(err, ErrCodeProfileIncomplete))
	assert.False(t, IsCode(err, ErrCodeDataIntegrity))
	assert.False(t, IsCode(assert.AnError, ErrCodeProfileIncomplete))
}

func TestConstructorsSetFieldAndRetryability(t *testing.T) {
	budgetErr := NewInvalidBudgetFormatError("oops")
	assert.Equal(t, "budgetRange", budgetErr.Field)
	assert.False(t, budgetErr.Retryable)

	pageErr := NewInvalidPaginationError(1, -5)
	assert.Equal(t, "pageSize", pageErr.Field)

	pageErr = NewInvalidPaginationError(0, 10)
	assert.Equal(t, "page", pageErr.Field)

	integrityErr := NewDataIntegrityError("prog-1", "minGpa", "negative threshold")
	assert.Equal(t, "minGpa", integrityErr.Field)
	assert.Equal(t, "prog-1", integrityErr.Metadata["programId"])

	fetchErr := NewProfileFetchFailedError(assert.AnError)
	assert.True(t, fetchErr.Retryable)

	inputErr := NewInvalidInputError("match-programs", []string{"userId is required"})
	assert.False(t, inputErr.Retryable)
	assert.Equal(t, []string{"userId is required"}, inputErr.Metadata["violations"])
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeProfileFetchFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeNotificationSendFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeCatalogQueryTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeProfileIncomplete))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDataIntegrity))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewInvalidBudgetFormatError("25k-ish")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "INVALID_BUDGET_FORMAT", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "INVALID_BUDGET_FORMAT", vars["errorCode"])
	assert.Equal(t, "budgetRange", vars["field"])

	retryable := ConvertToBPMNError(NewCatalogFetchFailedError(assert.AnError))
	assert.Equal(t, 3, retryable.Retries)
	assert.True(t, retryable.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeProfileIncomplete, "PROFILE"},
		{ErrCodeProgramNotFound, "CATALOG"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeNotificationSendFailed, "NOTIFICATION"},
		{ErrCodeDataIntegrity, "VALIDATION"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.category, GetErrorCategory(tt.code), string(tt.code))
	}
}

package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	err := NewInvalidFileTypeError("please select an Excel file", "report.pdf")
	assert.Equal(t, "invalid_file_type: please select an Excel file (report.pdf)", err.Error())

	err = NewValidationRejectedError("bad headers")
	assert.Equal(t, "validation_rejected: bad headers", err.Error())
}

func TestAs_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("validate: %w", NewNetworkError("upload failed", context.DeadlineExceeded))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeNetwork, appErr.Type)
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeCancelled))
}

func TestTypeOf_ForeignError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("boom")))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(fmt.Errorf("boom")))
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, GetStatusCode(NewUnauthorizedError("session expired")))
	assert.Equal(t, http.StatusUnsupportedMediaType, GetStatusCode(NewInvalidFileTypeError("nope")))
	assert.Equal(t, http.StatusBadGateway, GetStatusCode(NewSubmissionFailedError("both failed", nil)))
}

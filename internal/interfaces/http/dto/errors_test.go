package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeNoData, http.StatusNotFound},
		{ErrCodeEmptyStore, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidCriteria, http.StatusBadRequest},
		{ErrCodeSourceUnavailable, http.StatusBadGateway},
		{ErrCodeSourceMalformed, http.StatusBadGateway},
		{ErrCodeSyncFailed, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"NO_DATA", ErrCodeNoData},
		{"EMPTY_STORE", ErrCodeEmptyStore},
		{"INVALID_CRITERIA", ErrCodeInvalidCriteria},
		{"SOURCE_UNAVAILABLE", ErrCodeSourceUnavailable},
		{"SOURCE_MALFORMED", ErrCodeSourceMalformed},
		{"SYNC_FAILED", ErrCodeSyncFailed},
		// API codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestAPICodes(t *testing.T) {
	for code, c := range apiCodes {
		assert.True(t, strings.HasPrefix(code, "ERR_"), code)
		if c.domain != "" {
			assert.Equal(t, code, NormalizeErrorCode(c.domain))
		}
	}
	assert.Len(t, fromDomain, 12)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Product not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Result)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Product not found", resp.Error.Message)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{{Field: "page", Message: "must be at least 1"}}
	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Equal(t, details, resp.Error.Details)
}

func TestResponseEnvelopeJSON(t *testing.T) {
	t.Run("success carries result and metadata", func(t *testing.T) {
		data, err := json.Marshal(NewSuccessResponseWithMeta([]string{"a"}, PageMeta{Page: 2, Count: 1}))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, true, decoded["success"])
		assert.Equal(t, []any{"a"}, decoded["result"])
		assert.Equal(t, map[string]any{"page": float64(2), "count": float64(1)}, decoded["metadata"])
		assert.NotContains(t, decoded, "error")
	})

	t.Run("error omits result", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeSyncFailed, "Sync failed", "req-1"))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, false, decoded["success"])
		assert.NotContains(t, decoded, "result")
		errInfo := decoded["error"].(map[string]any)
		assert.Equal(t, ErrCodeSyncFailed, errInfo["code"])
		assert.Equal(t, "Sync failed", errInfo["message"])
		assert.Equal(t, "req-1", errInfo["request_id"])
	})
}

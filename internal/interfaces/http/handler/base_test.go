package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/interfaces/http/dto"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found"},
		{"invalid input with message", shared.ErrInvalidInput.WithMessage("invalid UUID: x"), http.StatusBadRequest, dto.ErrCodeInvalidInput, "invalid UUID: x"},
		{"invalid criteria", catalog.ErrInvalidCriteria, http.StatusBadRequest, dto.ErrCodeInvalidCriteria, catalog.ErrInvalidCriteria.Message},
		{"empty store", catalog.ErrEmptyStore, http.StatusBadRequest, dto.ErrCodeEmptyStore, catalog.ErrEmptyStore.Message},
		{"no data", report.ErrNoData, http.StatusNotFound, dto.ErrCodeNoData, report.ErrNoData.Message},
		{"source unavailable", catalog.ErrSourceUnavailable, http.StatusBadGateway, dto.ErrCodeSourceUnavailable, catalog.ErrSourceUnavailable.Message},
		{
			"sync failure wrapping a source error reports the sync failure",
			fmt.Errorf("%w: %w", shared.ErrSyncFailed.WithMessage("Catalog synchronization failed while fetching"), catalog.ErrSourceUnavailable),
			http.StatusBadGateway, dto.ErrCodeSyncFailed, "Catalog synchronization failed while fetching",
		},
		{"wrapped domain error", fmt.Errorf("repo: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_LogsServerErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(logger.WithContext(req.Context(), zap.New(core)))

	h.HandleError(c, errors.New("database exploded"))
	h.HandleError(c, shared.ErrNotFound)

	entries := logs.All()
	require.Len(t, entries, 1, "client errors are not logged")
	assert.Equal(t, "Unexpected error", entries[0].Message)
	assert.Equal(t, "database exploded", entries[0].ContextMap()["error"])
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"a", "b"}, dto.PageMeta{Page: 1, Count: 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"result":["a","b"],"metadata":{"page":1,"count":2}}`, w.Body.String())
}

package handler

import "github.com/catalogsync/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with a typed result field
type APIResponse[T any] struct {
	Success  bool           `json:"success"`
	Result   T              `json:"result,omitempty"`
	Metadata any            `json:"metadata,omitempty"`
	Error    *dto.ErrorInfo `json:"error,omitempty"`
}

// PagedResponse represents a paginated API response for OpenAPI documentation
// @Description API response carrying one page of results
type PagedResponse[T any] struct {
	Success  bool         `json:"success" example:"true"`
	Result   []T          `json:"result"`
	Metadata dto.PageMeta `json:"metadata"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

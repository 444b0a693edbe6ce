package dto

// Response is the envelope of every API response
type Response struct {
	Success  bool       `json:"success"`
	Result   any        `json:"result,omitempty"`
	Metadata any        `json:"metadata,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PageMeta is the metadata of a paginated listing
type PageMeta struct {
	Page  int `json:"page"`
	Count int `json:"count"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(result any) Response {
	return Response{
		Success: true,
		Result:  result,
	}
}

// NewSuccessResponseWithMeta creates a success response carrying metadata
func NewSuccessResponseWithMeta(result any, metadata any) Response {
	return Response{
		Success:  true,
		Result:   result,
		Metadata: metadata,
	}
}

// NewErrorResponse creates an error response. Domain codes are normalized.
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    NormalizeErrorCode(code),
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a 400 response listing rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

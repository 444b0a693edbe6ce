package dto

import "net/http"

// API error codes. Every code reaching a client has the ERR_ prefix.
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidCriteria = "ERR_INVALID_CRITERIA"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound   = "ERR_NOT_FOUND"
	ErrCodeNoData     = "ERR_NO_DATA"     // a report had nothing to aggregate
	ErrCodeEmptyStore = "ERR_EMPTY_STORE" // bulk delete on an empty store

	ErrCodeSourceUnavailable = "ERR_SOURCE_UNAVAILABLE"
	ErrCodeSourceMalformed   = "ERR_SOURCE_MALFORMED"
	ErrCodeSyncFailed        = "ERR_SYNC_FAILED"
)

// apiCode describes one API error code. domain is the shared.DomainError
// code that maps onto it, if any.
type apiCode struct {
	status int
	domain string
}

var apiCodes = map[string]apiCode{
	ErrCodeInternal:           {http.StatusInternalServerError, "INTERNAL_ERROR"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, ""},

	ErrCodeValidation:      {http.StatusBadRequest, "VALIDATION_ERROR"},
	ErrCodeBadRequest:      {http.StatusBadRequest, "BAD_REQUEST"},
	ErrCodeInvalidInput:    {http.StatusBadRequest, "INVALID_INPUT"},
	ErrCodeInvalidCriteria: {http.StatusBadRequest, "INVALID_CRITERIA"},

	ErrCodeUnauthorized: {http.StatusUnauthorized, "UNAUTHORIZED"},
	ErrCodeForbidden:    {http.StatusForbidden, ""},
	ErrCodeTokenExpired: {http.StatusUnauthorized, ""},
	ErrCodeTokenInvalid: {http.StatusUnauthorized, ""},

	ErrCodeNotFound:   {http.StatusNotFound, "NOT_FOUND"},
	ErrCodeNoData:     {http.StatusNotFound, "NO_DATA"},
	ErrCodeEmptyStore: {http.StatusBadRequest, "EMPTY_STORE"},

	// the upstream catalog failed, not the caller
	ErrCodeSourceUnavailable: {http.StatusBadGateway, "SOURCE_UNAVAILABLE"},
	ErrCodeSourceMalformed:   {http.StatusBadGateway, "SOURCE_MALFORMED"},
	ErrCodeSyncFailed:        {http.StatusBadGateway, "SYNC_FAILED"},
}

// fromDomain is apiCodes inverted on the domain code
var fromDomain = func() map[string]string {
	m := make(map[string]string, len(apiCodes))
	for code, c := range apiCodes {
		if c.domain != "" {
			m[c.domain] = code
		}
	}
	return m
}()

// GetHTTPStatus returns the status for an API code, 500 for codes it does not know
func GetHTTPStatus(code string) int {
	if c, ok := apiCodes[code]; ok {
		return c.status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code into its API code. API codes
// and unknown codes come back unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := fromDomain[code]; ok {
		return api
	}
	return code
}

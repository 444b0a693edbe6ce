package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Response is a recorded response from PerformRequest.
type Response struct {
	*httptest.ResponseRecorder
}

// PerformRequest serves one request through h, usually a gin engine.
func PerformRequest(h http.Handler, method, path string, body io.Reader, headers map[string]string) *Response {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return &Response{ResponseRecorder: w}
}

// JSONBody marshals v for use as a request body.
func JSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// JSONResponse decodes the envelope into a generic map.
func JSONResponse(t *testing.T, r *Response) map[string]any {
	return JSONResponseAs[map[string]any](t, r)
}

// JSONResponseAs decodes the body into T.
func JSONResponseAs[T any](t *testing.T, r *Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &out), "decode response: %s", r.Body.String())
	return out
}

// AssertSuccessResponse checks the envelope reports success without an error.
func AssertSuccessResponse(t *testing.T, r *Response) {
	t.Helper()

	env := JSONResponse(t, r)
	assert.Equal(t, true, env["success"])
	assert.Nil(t, env["error"])
}

// AssertErrorResponse checks the envelope carries the given error code.
func AssertErrorResponse(t *testing.T, r *Response, code string) {
	t.Helper()

	env := JSONResponse(t, r)
	assert.Equal(t, false, env["success"])
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %s", r.Body.String())
	assert.Equal(t, code, errObj["code"])
}

// Package testutil drives ledger handlers in-process: it builds requests as
// a given principal and asserts on the JSON the handlers answer with.
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

	id "chronoledger/pkg/domain"
)

// errorEnvelope is the body every ledger error response carries.
type errorEnvelope struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// NewPrincipalRequest builds a request acting as principal via the
// X-Principal header. A non-nil body is sent as JSON. An empty principal
// makes the request anonymous.
func NewPrincipalRequest(t *testing.T, method, path string, body any, principal id.Principal) *http.Request {
	t.Helper()
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		payload = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !principal.IsNil() {
		req.Header.Set("X-Principal", principal.String())
	}
	return req
}

// DoRequest serves req in-process and returns the recorded response.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// decode reads the recorded body without draining it, so one response can
// be asserted on several times.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response body %q", rr.Body.String())
	return out
}

func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	out := decode[T](t, rr)
	return &out
}

func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	assert.Equal(t, want, rr.Code, "status for body %s", rr.Body.String())
}

// AssertStatusAndError checks the status and the "error" code of the
// envelope. The description is free text and is not compared.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	AssertStatus(t, rr, wantStatus)
	env := decode[errorEnvelope](t, rr)
	assert.Equal(t, wantCode, env.Code, "error code (%s)", env.Description)
}

// AssertJSONContains checks one top-level field of an object response.
// Numbers decode as float64.
func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, key string, want any) {
	t.Helper()
	fields := decode[map[string]any](t, rr)
	assert.Equal(t, want, fields[key], "field %q", key)
}

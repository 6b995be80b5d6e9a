package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Makb000/opportunity-tracker/internal/domain"
	"github.com/Makb000/opportunity-tracker/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

// ============================================================================
// GET /api/data
// ============================================================================

func TestGetData_EmptyDefault(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodGet, "/api/data", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var ds domain.Dataset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ds))
	assert.NotNil(t, ds.Companies)
	assert.Empty(t, ds.Companies)
	assert.Empty(t, ds.Activities)
}

// ============================================================================
// PUT /api/data
// ============================================================================

func TestReplaceData_ReturnsCounts(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPut, "/api/data",
		`{"companies":[{"id":"c1"},{"id":"c2"}],"contacts":[{"id":"p1"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool           `json:"success"`
		Counts  map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Counts["companies"])
	assert.Equal(t, 1, resp.Counts["contacts"])
	assert.Equal(t, 0, resp.Counts["opportunities"])
}

func TestReplaceData_NonObjectBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[{"id":"c1"}]`},
		{"string", `"companies"`},
		{"number", `42`},
		{"null", `null`},
		{"malformed", `{`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.SetupAPI(t)

			rr := doRequest(t, api.Handler, http.MethodPut, "/api/data", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var apiErr domain.APIError
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
			assert.Equal(t, domain.ErrorTypeBadRequest, apiErr.Type)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		})
	}
}

func TestReplaceData_NonArrayCollectionDefaultsToEmpty(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPut, "/api/data",
		`{"companies":{"id":"c1"},"contacts":[{"id":"p1"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, api.Handler, http.MethodGet, "/api/data", "")
	var ds domain.Dataset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ds))
	assert.Empty(t, ds.Companies)
	assert.Len(t, ds.Contacts, 1)
}

// ============================================================================
// PATCH /api/data
// ============================================================================

func TestMergeData_ReplacesOnlySuppliedCollections(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPut, "/api/data",
		`{"companies":[{"id":"c1"}],"contacts":[{"id":"p1"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, api.Handler, http.MethodPatch, "/api/data",
		`{"contacts":[{"id":"p2"},{"id":"p3"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts["companies"])
	assert.Equal(t, 2, resp.Counts["contacts"])
}

func TestMergeData_MalformedJSON(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPatch, "/api/data", `{"contacts":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMergeData_ValidNonObjectIsNoOp(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPut, "/api/data",
		`{"companies":[{"id":"c1"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// A JSON array is valid JSON but supplies no collections
	rr = doRequest(t, api.Handler, http.MethodPatch, "/api/data", `[1,2,3]`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts["companies"])
}

// ============================================================================
// GET /api/backup
// ============================================================================

func TestBackup_ContentDisposition(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodPut, "/api/data",
		`{"companies":[{"id":"c1","name":"Acme"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, api.Handler, http.MethodGet, "/api/backup", "")

	require.Equal(t, http.StatusOK, rr.Code)
	expected := fmt.Sprintf("attachment; filename=crm-backup-%s.json",
		time.Now().UTC().Format("2006-01-02"))
	assert.Equal(t, expected, rr.Header().Get("Content-Disposition"))

	var ds domain.Dataset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ds))
	require.Len(t, ds.Companies, 1)
	assert.Equal(t, "Acme", ds.Companies[0]["name"])
}

// ============================================================================
// Routing
// ============================================================================

func TestUnknownAPIRoute_Returns404JSON(t *testing.T) {
	api := testutil.SetupAPI(t)

	rr := doRequest(t, api.Handler, http.MethodGet, "/api/nope/deeper/path", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

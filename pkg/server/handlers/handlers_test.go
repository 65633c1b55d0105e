package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/server/dto"
)

const testCatalogJSON = `[
  {
    "fund_id": "test_large_cap_001",
    "fund_name": "Test Large Cap Fund",
    "source_url": "https://example.com/large-cap",
    "last_updated": "2025-01-15T10:30:00",
    "expense_ratio": {"value": 0.85, "unit": "%", "display": "0.85%"},
    "minimum_sip": {"value": 100, "unit": "INR", "display": "₹100"}
  }
]`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "funds_data.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))

	pipeline, err := fundfaq.NewPipeline(context.Background(), fundfaq.Config{CatalogPath: path}, nil, nil, nil)
	require.NoError(t, err)

	health := NewHealthHandler(pipeline)
	query := NewQueryHandler(pipeline)
	admin := NewAdminHandler(pipeline, pipeline)

	r := gin.New()
	r.GET("/health", health.HealthCheck)
	r.GET("/api", health.APIInfo)
	r.POST("/query", query.Query)
	r.GET("/query", query.QueryGet)
	r.GET("/funds", admin.ListFunds)
	r.POST("/rebuild-index", admin.RebuildIndex)
	return r
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQueryPost(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/query",
		`{"query": "What is the minimum SIP?", "fund_name": "Test Large Cap Fund"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "₹100", resp.Answer)
	assert.True(t, resp.FallbackUsed)
	assert.Equal(t, []string{"https://example.com/large-cap"}, resp.SourceURLs)
}

func TestQueryGet(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/query?q=what+is+the+expense+ratio", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0.85%", resp.Answer)
}

func TestQueryValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing query field", `{"fund_name": "x"}`},
		{"blank query", `{"query": "   "}`},
		{"malformed json", `{"query": `},
		{"too long", `{"query": "` + strings.Repeat("a", dto.MaxQueryLength+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/query", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request", resp.Error)
		})
	}
}

func TestQueryGetEmptyParam(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/query", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryAdviceRefusal(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/query", `{"query": "Should I invest in this fund?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AdviceRefused)
	assert.Empty(t, resp.SourceURLs)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "fundfaq", resp["service"])
	assert.Equal(t, float64(2), resp["total_facts"])
	assert.Equal(t, false, resp["index_ready"])
	assert.Equal(t, false, resp["generation_configured"])
}

func TestAPIInfo(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "endpoints")
}

func TestListFunds(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/funds", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.FundsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Test Large Cap Fund"}, resp.Funds)
	assert.Equal(t, 1, resp.Count)
}

func TestRebuildIndex(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/rebuild-index", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RebuildResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rebuilt", resp.Status)
	assert.Equal(t, 2, resp.TotalFacts)
}

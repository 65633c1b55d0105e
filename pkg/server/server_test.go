package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/config"
)

const testCatalogJSON = `[
  {
    "fund_id": "test_large_cap_001",
    "fund_name": "Test Large Cap Fund",
    "source_url": "https://example.com/large-cap",
    "last_updated": "2025-01-15T10:30:00",
    "minimum_sip": {"value": 100, "unit": "INR", "display": "₹100"}
  }
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "funds_data.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))

	pipeline, err := fundfaq.NewPipeline(context.Background(), fundfaq.Config{CatalogPath: path}, nil, nil, nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	s := New(cfg, pipeline)
	s.Setup()
	return s
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/", "/api", "/health", "/healthcheck", "/funds"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, target)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A caller-supplied request id is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-7")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, "req-7", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

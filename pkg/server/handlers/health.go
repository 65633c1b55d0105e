package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/navlens/fundfaq"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	reader fundfaq.CatalogReader
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(reader fundfaq.CatalogReader) *HealthHandler {
	return &HealthHandler{
		reader: reader,
	}
}

// HealthCheck handles GET /health - knowledge base and capability status
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := h.reader.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":                "healthy",
		"service":               "fundfaq",
		"version":               Version,
		"timestamp":             time.Now().UTC().Format(time.RFC3339),
		"total_facts":           status.TotalFacts,
		"total_funds":           status.TotalFunds,
		"loaded_at":             status.LoadedAt.UTC().Format(time.RFC3339),
		"index_ready":           status.IndexReady,
		"generation_configured": status.GenerationConfigured,
	})
}

// APIInfo handles GET /api and GET / - endpoint discovery
func (h *HealthHandler) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "fundfaq",
		"description": "Mutual fund FAQ answering over a verified fact catalog",
		"version":     Version,
		"go_version":  GoVersion,
		"endpoints": gin.H{
			"GET /health":         "service and knowledge base status",
			"POST /query":         "answer a question (JSON body: query, fund_name)",
			"GET /query":          "answer a question (params: q, fund_name)",
			"GET /funds":          "list funds in the knowledge base",
			"POST /rebuild-index": "reload the catalog and rebuild the index",
		},
	})
}

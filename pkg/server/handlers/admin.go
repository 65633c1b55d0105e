package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/server/dto"
)

// AdminHandler handles knowledge base maintenance requests
type AdminHandler struct {
	rebuilder fundfaq.IndexRebuilder
	reader    fundfaq.CatalogReader
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(rebuilder fundfaq.IndexRebuilder, reader fundfaq.CatalogReader) *AdminHandler {
	return &AdminHandler{
		rebuilder: rebuilder,
		reader:    reader,
	}
}

// ListFunds handles GET /funds
func (h *AdminHandler) ListFunds(c *gin.Context) {
	funds := h.reader.AvailableFunds()
	c.JSON(http.StatusOK, dto.FundsResponse{
		Funds: funds,
		Count: len(funds),
	})
}

// RebuildIndex handles POST /rebuild-index. A failed rebuild keeps the
// previous knowledge base serving, so the error is reported without
// taking the service unhealthy.
func (h *AdminHandler) RebuildIndex(c *gin.Context) {
	if err := h.rebuilder.Rebuild(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "rebuild_failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	status := h.reader.Status()
	c.JSON(http.StatusOK, dto.RebuildResponse{
		Status:     "rebuilt",
		TotalFacts: status.TotalFacts,
		TotalFunds: status.TotalFunds,
		IndexReady: status.IndexReady,
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navlens/fundfaq"
	"github.com/navlens/fundfaq/pkg/server/dto"
)

// QueryHandler handles question answering requests
type QueryHandler struct {
	answerer fundfaq.QueryAnswerer
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(answerer fundfaq.QueryAnswerer) *QueryHandler {
	return &QueryHandler{
		answerer: answerer,
	}
}

// Query handles POST /query
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}
	h.answer(c, req)
}

// QueryGet handles GET /query?q=...&fund_name=...
func (h *QueryHandler) QueryGet(c *gin.Context) {
	req := dto.QueryRequest{
		Query:    c.Query("q"),
		FundName: c.Query("fund_name"),
	}
	h.answer(c, req)
}

// answer validates the request, runs the pipeline and writes the answer
// envelope. Past validation every outcome is a 200; degradation is
// reported in the body, not the status code.
func (h *QueryHandler) answer(c *gin.Context, req dto.QueryRequest) {
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	query := req.ToQuery()
	resp, err := h.answerer.AnswerQuery(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, fundfaq.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "query_failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, dto.NewQueryResponse(query.Text, resp))
}

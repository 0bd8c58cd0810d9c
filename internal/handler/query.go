package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sportsearch/internal/model"
	"sportsearch/internal/service"
)

// QueryHandler renders pipeline output over HTTP: either a FilterSpec plus
// executor results, or a single structured error with a machine-readable
// code. It is the response-formatter collaborator, outside the core.
type QueryHandler struct {
	queryService *service.QueryService
	logger       *zap.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queryService: queryService, logger: logger}
}

// Query handles POST /api/v1/query
func (h *QueryHandler) Query(c *gin.Context) {
	var raw model.RawQuery
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrInvalidRequest,
			Message: "Invalid request: " + err.Error(),
		})
		return
	}

	resp, err := h.queryService.Query(c.Request.Context(), raw)
	if err != nil {
		if pe, ok := model.AsPipelineError(err); ok {
			c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
				Error:   pe.Code,
				Message: pe.Message,
			})
			return
		}
		h.logger.Error("query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrInternal,
			Message: "Query failed",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Competitions handles GET /api/v1/competitions
func (h *QueryHandler) Competitions(c *gin.Context) {
	competitions, err := h.queryService.Competitions(c.Request.Context())
	if err != nil {
		h.logger.Error("listing competitions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrInternal,
			Message: "Listing competitions failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"competitions": competitions, "total": len(competitions)})
}

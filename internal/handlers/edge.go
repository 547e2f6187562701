package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/services"
	"github.com/topicflow/topicflow-backend/kg"
)

type EdgeHandler struct {
	log         *logger.Logger
	edgeService services.EdgeService
}

func NewEdgeHandler(log *logger.Logger, edgeService services.EdgeService) *EdgeHandler {
	return &EdgeHandler{
		log:         log.With("handler", "EdgeHandler"),
		edgeService: edgeService,
	}
}

func (h *EdgeHandler) List(c *gin.Context) {
	edges, err := h.edgeService.List(c.Request.Context(), c.Param("graphId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, edges)
}

func (h *EdgeHandler) Create(c *gin.Context) {
	var data kg.EdgeCreate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	edge, err := h.edgeService.Create(c.Request.Context(), c.Param("graphId"), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, edge)
}

func (h *EdgeHandler) Delete(c *gin.Context) {
	err := h.edgeService.Delete(c.Request.Context(), c.Param("graphId"), c.Param("parentSlug"), c.Param("childSlug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

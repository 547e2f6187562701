package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/services"
	"github.com/topicflow/topicflow-backend/kg"
)

type GraphHandler struct {
	log          *logger.Logger
	graphService services.GraphService
	batchService services.BatchService
}

func NewGraphHandler(log *logger.Logger, graphService services.GraphService, batchService services.BatchService) *GraphHandler {
	return &GraphHandler{
		log:          log.With("handler", "GraphHandler"),
		graphService: graphService,
		batchService: batchService,
	}
}

func (h *GraphHandler) List(c *gin.Context) {
	graphs, err := h.graphService.List(c.Request.Context())
	if err != nil {
		h.log.Error("List graphs failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, graphs)
}

func (h *GraphHandler) Create(c *gin.Context) {
	var data kg.GraphCreate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	graph, err := h.graphService.Create(c.Request.Context(), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, graph)
}

func (h *GraphHandler) Get(c *gin.Context) {
	graph, err := h.graphService.Get(c.Request.Context(), c.Param("graphId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, graph)
}

func (h *GraphHandler) Update(c *gin.Context) {
	var data kg.GraphUpdate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	graph, err := h.graphService.Update(c.Request.Context(), c.Param("graphId"), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, graph)
}

func (h *GraphHandler) Delete(c *gin.Context) {
	if err := h.graphService.Delete(c.Request.Context(), c.Param("graphId")); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *GraphHandler) FullData(c *gin.Context) {
	data, err := h.graphService.FullData(c.Request.Context(), c.Param("graphId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, data)
}

func (h *GraphHandler) BatchUpdate(c *gin.Context) {
	var ops kg.BatchOperations
	if err := c.ShouldBindJSON(&ops); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	result, err := h.batchService.Apply(c.Request.Context(), c.Param("graphId"), ops)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/services"
)

type LegacyHandler struct {
	log           *logger.Logger
	legacyService services.LegacyService
}

func NewLegacyHandler(log *logger.Logger, legacyService services.LegacyService) *LegacyHandler {
	return &LegacyHandler{
		log:           log.With("handler", "LegacyHandler"),
		legacyService: legacyService,
	}
}

// Graph serves the pre-API payload. The old frontend predates the response
// envelope, so the body is the bare graph document.
func (h *LegacyHandler) Graph(c *gin.Context) {
	graph, err := h.legacyService.Graph(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

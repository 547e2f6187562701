package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/services"
	"github.com/topicflow/topicflow-backend/kg"
)

type TopicHandler struct {
	log          *logger.Logger
	topicService services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService services.TopicService) *TopicHandler {
	return &TopicHandler{
		log:          log.With("handler", "TopicHandler"),
		topicService: topicService,
	}
}

func (h *TopicHandler) List(c *gin.Context) {
	topics, err := h.topicService.List(c.Request.Context(), c.Param("graphId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topics)
}

func (h *TopicHandler) Create(c *gin.Context) {
	var data kg.TopicCreate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	topic, err := h.topicService.Create(c.Request.Context(), c.Param("graphId"), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, topic)
}

func (h *TopicHandler) Get(c *gin.Context) {
	topic, err := h.topicService.Get(c.Request.Context(), c.Param("graphId"), c.Param("urlSlug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) Update(c *gin.Context) {
	var data kg.TopicUpdate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	topic, err := h.topicService.Update(c.Request.Context(), c.Param("graphId"), c.Param("urlSlug"), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topic)
}

func (h *TopicHandler) Delete(c *gin.Context) {
	if err := h.topicService.Delete(c.Request.Context(), c.Param("graphId"), c.Param("urlSlug")); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *TopicHandler) Prerequisites(c *gin.Context) {
	topics, err := h.topicService.Prerequisites(c.Request.Context(), c.Param("graphId"), c.Param("urlSlug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topics)
}

func (h *TopicHandler) Dependents(c *gin.Context) {
	topics, err := h.topicService.Dependents(c.Request.Context(), c.Param("graphId"), c.Param("urlSlug"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, topics)
}

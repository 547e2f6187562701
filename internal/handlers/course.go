package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/services"
	"github.com/topicflow/topicflow-backend/kg"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func courseIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("courseId"))
	if err != nil {
		return 0, apierr.Validation("courseId must be an integer")
	}
	return id, nil
}

func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context(), c.Param("graphId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, courses)
}

func (h *CourseHandler) Create(c *gin.Context) {
	var data kg.CourseCreate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), c.Param("graphId"), data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, course)
}

func (h *CourseHandler) Get(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), c.Param("graphId"), courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var data kg.CourseUpdate
	if err := c.ShouldBindJSON(&data); err != nil {
		RespondError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), c.Param("graphId"), courseID, data)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	courseID, err := courseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), c.Param("graphId"), courseID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

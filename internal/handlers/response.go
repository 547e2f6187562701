package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/apierr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type DataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// RespondError maps any error onto the error envelope, using the status and
// code carried by apierr errors and DATABASE_ERROR/500 for everything else.
func RespondError(c *gin.Context, err error) {
	apiErr := apierr.From(err)
	msg := "unknown error"
	if apiErr.Err != nil {
		msg = apiErr.Err.Error()
	}
	c.JSON(apiErr.Status, ErrorEnvelope{
		Error: APIError{
			Code:    apiErr.Code,
			Message: msg,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Success: true, Data: payload})
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, DataEnvelope{Success: true, Data: payload})
}

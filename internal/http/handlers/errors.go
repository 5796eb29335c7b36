package handlers

import (
	"errors"
	"net/http"

	"task_api/internal/logger"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgBadBody            = "Invalid request body"
	msgUnauthorized       = "Unauthorized"
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists"
	msgTaskNotFound       = "Task not found"
	msgUserNotFound       = "User not found"
	msgServerError        = "Server error"
)

// respondError maps service errors onto status codes. Anything unknown is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": msgUserExists})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgTaskNotFound})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgUserNotFound})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			"error", err, "method", c.Request.Method, "route", c.FullPath())
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
	}
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msgBadBody})
}

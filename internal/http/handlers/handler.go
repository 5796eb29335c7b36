package handlers

import (
	"task_api/internal/http/middleware"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	Auth    *service.AuthService
	Tasks   *service.TaskService
	Audit   *service.AuditService
	Cookies CookiePolicy
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, audit *service.AuditService, cookies CookiePolicy) *Handler {
	return &Handler{
		Auth:    auth,
		Tasks:   tasks,
		Audit:   audit,
		Cookies: cookies,
	}
}

// getUserID returns the id stored by the auth gate.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.CurrentUserID(c)
}

func requestInfo(c *gin.Context) service.RequestInfo {
	return service.RequestInfo{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

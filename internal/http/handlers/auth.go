package handlers

import (
	"errors"
	"net/http"

	"task_api/internal/http/middleware"
	"task_api/internal/logger"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}

	ctx := c.Request.Context()
	sess, err := h.Auth.Register(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Audit.LogRegister(ctx, sess.User.ID, requestInfo(c))
	logger.FromContext(ctx).Info("user registered", "user_id", sess.User.ID)

	h.Cookies.Set(c.Writer, sess.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    sess.User,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}

	ctx := c.Request.Context()
	sess, err := h.Auth.Login(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Audit.LogLoginFailed(ctx, service.NormalizeEmail(in.Email), requestInfo(c))
		}
		respondError(c, err)
		return
	}

	h.Audit.LogLogin(ctx, sess.User.ID, requestInfo(c))

	h.Cookies.Set(c.Writer, sess.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    sess.User,
		"token":   sess.Token,
	})
}

// Logout clears the session cookie. It does not require a valid session, so
// repeating it is harmless.
func (h *Handler) Logout(c *gin.Context) {
	userID := uuid.Nil
	if token := middleware.TokenFromRequest(c); token != "" {
		if id, err := h.Auth.UserIDFromToken(token); err == nil {
			userID = id
		}
	}
	if userID != uuid.Nil {
		h.Audit.LogLogout(c.Request.Context(), userID, requestInfo(c))
	}

	h.Cookies.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

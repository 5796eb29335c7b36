package handlers

import (
	"net/http"

	"task_api/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Auth.UpdateProfile(ctx, userID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	var changed []string
	if in.Name != nil {
		changed = append(changed, "name")
	}
	if in.Email != nil {
		changed = append(changed, "email")
	}
	h.Audit.LogProfileUpdate(ctx, userID, changed, requestInfo(c))

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

package handlers

import (
	"net/http"

	"task_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), userID, service.ListTasksInput{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, taskID, ok := h.taskParams(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	var in service.CreateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := h.taskParams(c)
	if !ok {
		return
	}

	var in service.UpdateTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c)
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), userID, taskID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := h.taskParams(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// taskParams resolves caller and task id. A malformed id cannot match any
// task, so it is answered like a missing one.
func (h *Handler) taskParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return uuid.Nil, uuid.Nil, false
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgTaskNotFound})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}

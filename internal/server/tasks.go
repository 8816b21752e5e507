package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/models"
	"tasktrack/internal/service"
)

type taskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     *string         `json:"due_date"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	Tags        json.RawMessage `json:"tags"`
}

type reorderRequest struct {
	TaskIDs []string `json:"task_ids"`
}

// handleListTasks fetches the tasks of a list in position order.
func (s *Server) handleListTasks(c *gin.Context) {
	listID, ok := s.parseID(c, "list_id", "task list")
	if !ok {
		return
	}

	tasks, err := s.tasks.ListTasks(c.Request.Context(), currentUser(c), listID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask appends a new task to a list.
func (s *Server) handleCreateTask(c *gin.Context) {
	listID, ok := s.parseID(c, "list_id", "task list")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}
	tags, err := models.DecodeTags(req.Tags)
	if err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), currentUser(c), listID, service.CreateTaskInput{
		Title:       getString(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        tags,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask applies a partial update to a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	taskID, ok := s.parseID(c, "task_id", "task")
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}
	tags, err := models.DecodeTags(req.Tags)
	if err != nil {
		s.respondError(c, err)
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if tags != nil {
		in.Tags = &tags
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), currentUser(c), taskID, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task; the rest of the list closes the gap.
func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID, ok := s.parseID(c, "task_id", "task")
	if !ok {
		return
	}
	if err := s.tasks.DeleteTask(c.Request.Context(), currentUser(c), taskID); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

// handleReorderTasks sets the order of every task in a list.
func (s *Server) handleReorderTasks(c *gin.Context) {
	listID, ok := s.parseID(c, "list_id", "task list")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}

	tasks, err := s.tasks.ReorderTasks(c.Request.Context(), currentUser(c), listID, req.TaskIDs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

func getString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

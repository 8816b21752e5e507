package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/models"
)

type listRequest struct {
	Name string `json:"name" binding:"required"`
}

// handleListLists returns the caller's lists.
func (s *Server) handleListLists(c *gin.Context) {
	lists, err := s.tasks.ListLists(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, lists)
}

// handleCreateList creates a new list for the caller.
func (s *Server) handleCreateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}

	list, err := s.tasks.CreateList(c.Request.Context(), currentUser(c), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, list)
}

// handleDeleteList removes a list and all of its tasks.
func (s *Server) handleDeleteList(c *gin.Context) {
	listID, ok := s.parseID(c, "list_id", "task list")
	if !ok {
		return
	}
	if err := s.tasks.DeleteList(c.Request.Context(), currentUser(c), listID); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktrack/internal/models"
)

const userContextKey = "tasktrack.user"

type registerRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleRegister creates an account and returns its first access token.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}

	_, token, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleLogin exchanges credentials for an access token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, models.NewValidationError("invalid request: %v", err))
		return
	}

	_, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// requireUser resolves the bearer token and aborts with 401 when it is
// missing or invalid.
func (s *Server) requireUser(c *gin.Context) {
	user, err := s.auth.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Set(userContextKey, user)
	c.Next()
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet(userContextKey).(models.User)
}

// bearerToken extracts the credentials of an "Authorization: Bearer" header.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

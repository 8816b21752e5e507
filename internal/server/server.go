package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tasktrack/internal/models"
	"tasktrack/internal/notify"
	"tasktrack/internal/service"
)

// Options tunes the HTTP surface.
type Options struct {
	StaticDir    string
	AllowOrigins []string
	WriteTimeout time.Duration
}

// Server provides HTTP handlers for the task list backend.
type Server struct {
	engine   *gin.Engine
	auth     *service.AuthService
	tasks    *service.TaskService
	registry *notify.Registry
	logger   *slog.Logger
	opts     Options
	upgrader websocket.Upgrader
}

// New constructs the HTTP server with routes and middleware configured.
func New(auth *service.AuthService, tasks *service.TaskService, registry *notify.Registry, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	srv := &Server{
		engine:   router,
		auth:     auth,
		tasks:    tasks,
		registry: registry,
		logger:   logger,
		opts:     opts,
	}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.originAllowed,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/register", s.handleRegister)
		api.POST("/login", s.handleLogin)
		api.GET("/ws/lists/:list_id", s.handleStream)

		authed := api.Group("", s.requireUser)
		{
			authed.GET("/lists", s.handleListLists)
			authed.POST("/lists", s.handleCreateList)
			authed.DELETE("/lists/:list_id", s.handleDeleteList)
			authed.GET("/lists/:list_id/tasks", s.handleListTasks)
			authed.POST("/lists/:list_id/tasks", s.handleCreateTask)
			authed.PUT("/lists/:list_id/tasks/reorder", s.handleReorderTasks)

			authed.PUT("/tasks/:task_id", s.handleUpdateTask)
			authed.DELETE("/tasks/:task_id", s.handleDeleteTask)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "watched_lists": s.registry.Lists()})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization")
	return cfg
}

func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.opts.AllowOrigins, "*") {
		return true
	}
	return slices.Contains(s.opts.AllowOrigins, origin)
}

// parseID validates an identifier path parameter. Malformed ids cannot exist,
// so they are reported as missing resources.
func (s *Server) parseID(c *gin.Context, name, resource string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		s.respondError(c, fmt.Errorf("%s %w", resource, models.ErrNotFound))
		return "", false
	}
	return raw, true
}

// respondError maps domain errors to status codes and writes a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	var (
		validation *models.ValidationError
		conflict   *models.ConflictError
	)
	switch {
	case errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

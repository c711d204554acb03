package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/notify"
	"taskboard/internal/session"
	"taskboard/internal/tasks"
)

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Tasks         *tasks.Store
	Board         *tasks.Board
	Sessions      *session.Manager
	Notifications *notify.Recorder
	Metrics       *metrics.Collector
	ShareBaseURL  string
	PageSize      int
	Now           func() time.Time
}

// Server provides the HTTP API of the task board.
type Server struct {
	engine    *gin.Engine
	deps      Deps
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Deps, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.PageSize < 1 {
		deps.PageSize = 10
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz", "/metrics"))

	srv := &Server{
		engine:    router,
		deps:      deps,
		logger:    logger,
		staticDir: staticDir,
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
	if s.deps.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		sess := api.Group("/session")
		{
			sess.GET("", s.handleCurrentUser)
			sess.POST("", s.handleLogin)
			sess.POST("/google", s.handleLoginGoogle)
			sess.DELETE("", s.handleLogout)
		}

		authed := api.Group("", s.requireSession)

		list := authed.Group("/tasks")
		{
			list.GET("", s.handleListTasks)
			list.POST("", s.handleCreateTask)
			list.POST("/refresh", s.handleRefresh)
			list.GET(":id", s.handleGetTask)
			list.PUT(":id", s.handleUpdateTask)
			list.DELETE(":id", s.handleDeleteTask)
			list.POST(":id/cycle", s.handleCycleStatus)
			list.POST(":id/share", s.handleShare)
			list.DELETE(":id/share", s.handleUnshare)
			list.GET(":id/link", s.handleShareLink)
		}

		board := authed.Group("/board")
		{
			board.GET("", s.handleBoardView)
			board.PUT("/filters", s.handleSetFilters)
			board.DELETE("/filters", s.handleClearFilters)
			board.PUT("/page", s.handleSetPage)
		}

		authed.GET("/stats", s.handleStats)
		authed.GET("/notifications", s.handleNotifications)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireSession rejects requests made while signed out.
func (s *Server) requireSession(c *gin.Context) {
	if _, ok := s.deps.Sessions.Current(); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.Next()
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr models.ValidationErrors
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tasks.ErrInvalidPage),
		errors.Is(err, tasks.ErrInvalidLimit),
		errors.Is(err, tasks.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}

	var verr models.ValidationErrors
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"error": "validation failed", "fields": verr})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

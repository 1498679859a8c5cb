// Package router wires handlers and middleware into the HTTP route table.
package router

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/personal-task-api/internal/constants"
	"github.com/yukikurage/personal-task-api/internal/handlers"
	"github.com/yukikurage/personal-task-api/internal/metrics"
	"github.com/yukikurage/personal-task-api/internal/middleware"
	"github.com/yukikurage/personal-task-api/internal/ratelimit"
	"github.com/yukikurage/personal-task-api/internal/services"
	"gorm.io/gorm"
)

// Deps are the collaborators the route table needs.
type Deps struct {
	DB           *gorm.DB
	Logger       *slog.Logger
	SessionStore sessions.Store
	TaskService  *services.TaskService
	UserService  *services.UserService
	AuthService  *services.AuthService
	Metrics      *metrics.Metrics
	// Gatherer backs GET /metrics; the endpoint is omitted when nil
	Gatherer prometheus.Gatherer
	// Limiter throttles anonymous write endpoints; nil disables rate limiting
	Limiter ratelimit.Limiter
}

// New builds a gin engine serving the whole API.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	Setup(r, deps)
	return r
}

// Setup installs middleware and routes on r.
func Setup(r *gin.Engine, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Metrics(deps.Metrics),
		sessions.Sessions(constants.SessionCookieName, deps.SessionStore),
	)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)

	requireAuth := middleware.RequireAuth(deps.AuthService)
	throttle := func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		throttle = middleware.RateLimit(deps.Limiter, deps.Metrics)
	}

	// Health check endpoint
	r.GET("/health", healthHandler.Health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", throttle, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// User routes; registration is open, everything else is protected
		users := api.Group("/users")
		{
			users.POST("", throttle, userHandler.CreateUser)
			users.GET("", requireAuth, userHandler.ListUsers)
			users.GET("/:id", requireAuth, userHandler.GetUser)
			users.PUT("/:id", requireAuth, userHandler.UpdateUser)
			users.PATCH("/:id", requireAuth, userHandler.UpdateUser)
			users.DELETE("/:id", requireAuth, userHandler.DeleteUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.ReplaceTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/:state", taskHandler.TransitionTask)
		}
	}
}

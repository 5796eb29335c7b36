package http

import (
	"time"

	"task_api/internal/http/handlers"
	"task_api/internal/http/middleware"
	"task_api/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteConfig carries what RegisterRoutes needs beyond the handlers.
type RouteConfig struct {
	AllowedOrigins []string

	AuthRateLimit  int
	AuthRateWindow time.Duration
	TaskRateLimit  int
	TaskRateWindow time.Duration
}

func RegisterRoutes(
	r *gin.Engine,
	h *handlers.Handler,
	health *handlers.HealthHandler,
	gate gin.HandlerFunc,
	limiter *middleware.RateLimiter,
	hub *ws.Hub,
	cfg RouteConfig,
) {
	r.Use(middleware.RequestLogger(), middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", health.Banner)

	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(limiter.ByIP("auth", cfg.AuthRateLimit, cfg.AuthRateWindow))
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", gate, h.Me)
		auth.PUT("/profile", gate, h.UpdateProfile)
		auth.GET("/activity", gate, h.Activity)
	}

	// Task writes are limited per user, not per IP
	taskRL := limiter.ByUser("tasks", cfg.TaskRateLimit, cfg.TaskRateWindow)

	tasks := api.Group("/tasks")
	tasks.Use(gate)
	{
		tasks.GET("", h.ListTasks)
		tasks.GET("/events", ws.HandleEvents(hub, cfg.AllowedOrigins))
		tasks.GET("/:id", h.GetTask)
		tasks.POST("", taskRL, h.CreateTask)
		tasks.PUT("/:id", taskRL, h.UpdateTask)
		tasks.DELETE("/:id", taskRL, h.DeleteTask)
	}
}

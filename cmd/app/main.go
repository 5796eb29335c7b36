package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_api/internal/config"
	"task_api/internal/db"
	httpServer "task_api/internal/http"
	"task_api/internal/http/handlers"
	"task_api/internal/http/middleware"
	"task_api/internal/logger"
	"task_api/internal/repository"
	"task_api/internal/repository/memory"
	"task_api/internal/service"
	"task_api/internal/ws"

	"github.com/gin-gonic/gin"
)

const (
	version   = "1.0.0"
	memoryDSN = "memory://"
)

type stores struct {
	users  service.UserStore
	tasks  service.TaskStore
	audit  service.AuditStore
	pinger handlers.Pinger
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DatabaseURL == memoryDSN {
		logger.Warn("using in-memory store, data is lost on exit")
		m := memory.NewStore()
		return &stores{users: m.Users(), tasks: m.Tasks(), audit: m.Audit(), pinger: m, close: func() {}}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, cfg.DatabaseURL, "up"); err != nil {
			return nil, err
		}
	}

	// the handle connects lazily; without migrations on start an unreachable
	// database at boot only fails readiness
	h := db.NewHandle(cfg.DatabaseURL)
	if err := h.Ping(ctx); err != nil {
		logger.Warn("database not reachable yet", "error", err)
	}
	return &stores{
		users:  repository.NewUserRepository(h),
		tasks:  repository.NewTaskRepository(h),
		audit:  repository.NewAuditRepository(h),
		pinger: h,
		close:  h.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(cfg.GinMode)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStores(bootCtx, cfg)
	cancelBoot()
	if err != nil {
		logger.Fatal("open stores", "error", err)
	}
	defer st.close()

	rdb := middleware.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	codec := service.NewTokenCodec(cfg.JWTSecret)
	hub := ws.NewHub()
	authSvc := service.NewAuthService(st.users, service.NewPasswordHasher(service.DefaultBcryptCost), codec)
	h := handlers.NewHandler(
		authSvc,
		service.NewTaskService(st.tasks, hub),
		service.NewAuditService(st.audit),
		handlers.CookiePolicy{Secure: cfg.CookieSecure},
	)

	r := gin.New()
	r.Use(gin.Recovery())
	httpServer.RegisterRoutes(r, h,
		handlers.NewHealthHandler(st.pinger, rdb, version),
		middleware.AuthGate(authSvc),
		middleware.NewRateLimiter(rdb),
		hub,
		httpServer.RouteConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateWindow: cfg.AuthRateWindow,
			TaskRateLimit:  cfg.TaskRateLimit,
			TaskRateWindow: cfg.TaskRateWindow,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

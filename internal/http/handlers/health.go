package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const (
	checkHealthy   = "healthy"
	checkUnhealthy = "unhealthy"
	checkDegraded  = "degraded"
	checkDisabled  = "disabled"
)

// Pinger is the database side of the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dependency is one backend the API talks to. Only required ones can take
// the instance out of rotation.
type dependency struct {
	name     string
	required bool
	probe    func(ctx context.Context) string
}

type HealthHandler struct {
	deps    []dependency
	db      Pinger
	started time.Time
	version string
}

// NewHealthHandler wires the database as a required dependency and Redis,
// which may be nil, as an optional one: without it rate limiting falls back
// to per-instance buckets.
func NewHealthHandler(db Pinger, rdb *redis.Client, version string) *HealthHandler {
	h := &HealthHandler{db: db, started: time.Now(), version: version}
	h.deps = []dependency{
		{name: "database", required: true, probe: func(ctx context.Context) string {
			if db.Ping(ctx) != nil {
				return checkUnhealthy
			}
			return checkHealthy
		}},
		{name: "redis", probe: func(ctx context.Context) string {
			switch {
			case rdb == nil:
				return checkDisabled
			case rdb.Ping(ctx).Err() != nil:
				return checkDegraded
			}
			return checkHealthy
		}},
	}
	return h
}

type ReadinessReport struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	CheckedAt time.Time         `json:"checkedAt"`
	Checks    map[string]string `json:"checks"`
}

// Banner answers GET /.
func (h *HealthHandler) Banner(c *gin.Context) {
	c.String(http.StatusOK, "Backend API is live")
}

// Liveness only proves the process serves HTTP; it never touches a store.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every dependency. Error details stay in the logs.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	report := ReadinessReport{
		Status:    checkHealthy,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		CheckedAt: time.Now().UTC(),
		Checks:    make(map[string]string, len(h.deps)),
	}
	code := http.StatusOK
	for _, d := range h.deps {
		state := d.probe(ctx)
		report.Checks[d.name] = state
		if d.required && state != checkHealthy {
			report.Status = checkUnhealthy
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, report)
}

// Health is the short form of Readiness: database only.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": checkUnhealthy, "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	db        *sqlx.DB
	startedAt time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *sqlx.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now(), version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	overall, dbStatus := "ok", "ok"
	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		overall, dbStatus = "degraded", "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"version":  h.version,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"database": dbStatus,
	})
}

// Root handles GET / with a short endpoint index
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "CampusCruz API",
		"version": h.version,
		"endpoints": gin.H{
			"auth":   "/api/auth",
			"rides":  "/api/rides",
			"users":  "/api/users",
			"admin":  "/api/admin",
			"health": "/health",
		},
	})
}

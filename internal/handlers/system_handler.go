package handlers

import (
	"context"
	"net/http"
	"time"

	"go-print-erp/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemStatus struct {
	InstanceID string        `json:"instanceId"`
	Version    string        `json:"version"`
	Database   string        `json:"database"`
	Uptime     string        `json:"uptime"`
	Seller     models.Seller `json:"seller"`
}

type SystemHandler struct {
	db         *gorm.DB
	instanceID string
	version    string
	seller     models.Seller
	started    time.Time
}

func NewSystemHandler(db *gorm.DB, instanceID, version string, seller models.Seller) *SystemHandler {
	return &SystemHandler{db: db, instanceID: instanceID, version: version, seller: seller, started: time.Now()}
}

// GET /health is public and reports whether the database answers.
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

// GET /api/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	database := "ok"
	if err := h.ping(c.Request.Context()); err != nil {
		database = "unreachable"
	}
	c.JSON(http.StatusOK, SystemStatus{
		InstanceID: h.instanceID,
		Version:    h.version,
		Database:   database,
		Uptime:     time.Since(h.started).Truncate(time.Second).String(),
		Seller:     h.seller,
	})
}

func (h *SystemHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

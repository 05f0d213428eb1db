package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports whether the store answers a ping.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.String(http.StatusServiceUnavailable, "store unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}

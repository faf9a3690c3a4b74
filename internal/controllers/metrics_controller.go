package controllers

import (
	"net/http"
	"time"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MetricsController struct {
	db      *gorm.DB
	metrics *services.MetricsService
}

func NewMetricsController(db *gorm.DB) *MetricsController {
	return &MetricsController{db: db, metrics: services.NewMetricsService(db)}
}

// GetStats returns aggregate lead counts for a named window. Managers see
// counts over their assigned leads only.
func (mc *MetricsController) GetStats(c *gin.Context) {
	actor, ok := requireAction(c, mc.db, authz.ActionViewMetrics)
	if !ok {
		return
	}

	window, err := services.ParseWindow(c.DefaultQuery("window", "last30"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats := mc.metrics.Stats(actor, window)
	c.JSON(http.StatusOK, gin.H{
		"window": window.Name,
		"from":   window.From,
		"to":     window.To,
		"stats":  stats,
	})
}

// GetSeries returns per-bucket lead counts for charting.
func (mc *MetricsController) GetSeries(c *gin.Context) {
	actor, ok := requireAction(c, mc.db, authz.ActionViewMetrics)
	if !ok {
		return
	}

	window, err := services.ParseWindow(c.DefaultQuery("window", "last30"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points := mc.metrics.Series(actor, window)
	c.JSON(http.StatusOK, gin.H{
		"window": window.Name,
		"bucket": window.Bucket,
		"points": points,
	})
}

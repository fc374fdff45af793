package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetDailySummary 获取单日汇总
// GET /api/summary/daily?date=2026-01-15
func (h *Handler) GetDailySummary(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	summary, err := h.energyService.DailySummary(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("Failed to build daily summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build daily summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetPeriodSummary 获取区间汇总
// GET /api/summary/period?start=2026-01-01&end=2026-02-01
func (h *Handler) GetPeriodSummary(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	summary, err := h.energyService.PeriodSummary(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to build period summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build period summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetStats 获取数据库统计
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.db.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListTemperatureReadings 获取温度读数
// GET /api/readings/temperature?sensor=sauna&start=...&end=...
func (h *Handler) ListTemperatureReadings(c *gin.Context) {
	sensorID := c.Query("sensor")
	if sensorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sensor parameter"})
		return
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range"})
		return
	}

	readings, err := h.tempRepo.ListBySensor(c.Request.Context(), sensorID, start, end)
	if err != nil {
		h.logger.Error("Failed to list temperature readings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list temperature readings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": readings})
}

// ListElectricityReadings 获取电量读数
// GET /api/readings/electricity?source=eon&start=...&end=...
func (h *Handler) ListElectricityReadings(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source parameter"})
		return
	}

	start, end, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range"})
		return
	}

	readings, err := h.elecRepo.ListBySource(c.Request.Context(), source, start, end)
	if err != nil {
		h.logger.Error("Failed to list electricity readings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list electricity readings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": readings})
}

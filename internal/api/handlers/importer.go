package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImportEon 导入电网智能电表 CSV
// POST /api/import/eon（请求体为 CSV 文本）
func (h *Handler) ImportEon(c *gin.Context) {
	result, err := h.energyService.ImportEonCSV(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to import eon csv", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ImportHuum 导入 huum-cli 温度导出
// POST /api/import/huum（请求体为表格文本）
func (h *Handler) ImportHuum(c *gin.Context) {
	result, err := h.energyService.ImportHuumExport(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to import huum export", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ImportWeather 拉取并导入室外温度
// POST /api/import/weather?days=7
func (h *Handler) ImportWeather(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 || days > 92 {
		days = 7
	}

	result, err := h.energyService.ImportWeather(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("Failed to import weather", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch weather data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// CollectShelly 从本地 Shelly 分表采集一次
// POST /api/shelly/collect
func (h *Handler) CollectShelly(c *gin.Context) {
	result, err := h.energyService.CollectShelly(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to collect shelly reading", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

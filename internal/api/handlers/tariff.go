package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListTariffs 获取电价计划列表
func (h *Handler) ListTariffs(c *gin.Context) {
	tariffs, err := h.tariffRepo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list tariffs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tariffs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tariffs})
}

// ReloadTariffs 从 YAML 配置重载电价计划
// POST /api/tariffs/reload
func (h *Handler) ReloadTariffs(c *gin.Context) {
	count, err := h.energyService.ReloadTariffs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to reload tariffs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Tariffs reloaded via API", zap.Int("count", count))
	c.JSON(http.StatusOK, gin.H{
		"message": "Tariffs reloaded",
		"count":   count,
	})
}

// UpdateCosts 给尚未计费的读数回填费用
// POST /api/tariffs/update-costs
func (h *Handler) UpdateCosts(c *gin.Context) {
	updated, skipped, err := h.energyService.UpdateCosts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to update costs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update costs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Costs updated",
		"updated": updated,
		"skipped": skipped,
	})
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// parseTimeRange 解析 start / end 查询参数（日期或 RFC3339）
func parseTimeRange(c *gin.Context) (start, end *time.Time, err error) {
	if v := c.Query("start"); v != "" {
		ts, perr := parseQueryTime(v)
		if perr != nil {
			return nil, nil, perr
		}
		start = &ts
	}
	if v := c.Query("end"); v != "" {
		ts, perr := parseQueryTime(v)
		if perr != nil {
			return nil, nil, perr
		}
		end = &ts
	}
	return start, end, nil
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

// ListSessions 获取桑拿会话列表
func (h *Handler) ListSessions(c *gin.Context) {
	start, end, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time range"})
		return
	}

	sessions, err := h.sessionRepo.List(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// GetSession 获取会话详情
func (h *Handler) GetSession(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return
	}

	session, err := h.sessionRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": session})
}

// RefreshSessions 全量重建会话并回填电量关联
// POST /api/sessions/refresh
func (h *Handler) RefreshSessions(c *gin.Context) {
	result, err := h.energyService.RefreshSessions(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to refresh sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh sessions"})
		return
	}

	h.logger.Info("Sessions refreshed via API",
		zap.Int("imported", result.Imported),
		zap.Int("kwh_updated", result.KwhUpdated))
	c.JSON(http.StatusOK, gin.H{"data": result})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/homenergy/internal/repository"
	"github.com/langchou/homenergy/internal/service"
	"github.com/langchou/homenergy/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger        *zap.Logger
	db            *repository.DB
	tempRepo      *repository.TemperatureRepository
	elecRepo      *repository.ElectricityRepository
	sessionRepo   *repository.SessionRepository
	tariffRepo    *repository.TariffRepository
	energyService *service.EnergyService
	wsHub         *ws.Hub
	upgrader      websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	db *repository.DB,
	tempRepo *repository.TemperatureRepository,
	elecRepo *repository.ElectricityRepository,
	sessionRepo *repository.SessionRepository,
	tariffRepo *repository.TariffRepository,
	energyService *service.EnergyService,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:        logger,
		db:            db,
		tempRepo:      tempRepo,
		elecRepo:      elecRepo,
		sessionRepo:   sessionRepo,
		tariffRepo:    tariffRepo,
		energyService: energyService,
		wsHub:         wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 桑拿会话
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/refresh", h.RefreshSessions)

		// 原始读数
		api.GET("/readings/temperature", h.ListTemperatureReadings)
		api.GET("/readings/electricity", h.ListElectricityReadings)

		// 汇总报告
		api.GET("/summary/daily", h.GetDailySummary)
		api.GET("/summary/period", h.GetPeriodSummary)

		// 数据导入
		api.POST("/import/eon", h.ImportEon)
		api.POST("/import/huum", h.ImportHuum)
		api.POST("/import/weather", h.ImportWeather)
		api.POST("/shelly/collect", h.CollectShelly)

		// 电价
		api.GET("/tariffs", h.ListTariffs)
		api.POST("/tariffs/reload", h.ReloadTariffs)
		api.POST("/tariffs/update-costs", h.UpdateCosts)

		// 统计
		api.GET("/stats", h.GetStats)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": h.wsHub.ClientCount(),
	})
}

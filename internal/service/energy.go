package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/homenergy/internal/analysis"
	"github.com/langchou/homenergy/internal/config"
	"github.com/langchou/homenergy/internal/models"
	"github.com/langchou/homenergy/internal/repository"
	"github.com/langchou/homenergy/internal/tariff"
	"github.com/langchou/homenergy/pkg/ws"
)

// EnergyService 能耗分析服务
type EnergyService struct {
	cfg          *config.Config
	logger       *zap.Logger
	tempRepo     *repository.TemperatureRepository
	elecRepo     *repository.ElectricityRepository
	sessionRepo  *repository.SessionRepository
	tariffRepo   *repository.TariffRepository
	baselineRepo *repository.BaselineRepository
	wsHub        *ws.Hub // WebSocket Hub

	mu      sync.RWMutex
	tariffs []models.Tariff // 电价计划缓存
}

// NewEnergyService 创建能耗服务
func NewEnergyService(
	cfg *config.Config,
	logger *zap.Logger,
	tempRepo *repository.TemperatureRepository,
	elecRepo *repository.ElectricityRepository,
	sessionRepo *repository.SessionRepository,
	tariffRepo *repository.TariffRepository,
	baselineRepo *repository.BaselineRepository,
	wsHub *ws.Hub,
) *EnergyService {
	return &EnergyService{
		cfg:          cfg,
		logger:       logger,
		tempRepo:     tempRepo,
		elecRepo:     elecRepo,
		sessionRepo:  sessionRepo,
		tariffRepo:   tariffRepo,
		baselineRepo: baselineRepo,
		wsHub:        wsHub,
	}
}

// detectorConfig 从运行配置构建检测配置
func (s *EnergyService) detectorConfig() analysis.DetectorConfig {
	cfg := analysis.DefaultDetectorConfig()
	cfg.StartupDeltaC = s.cfg.StartupDeltaC
	cfg.HeatingStartThresholdC = s.cfg.HeatingStartThresholdC
	cfg.HotThresholdC = s.cfg.HotThresholdC
	cfg.MinPeakTempC = s.cfg.MinPeakTempC
	cfg.MinSessionDuration = s.cfg.MinSessionDuration
	cfg.CoolingThresholdC = s.cfg.CoolingThresholdC
	cfg.SessionGap = s.cfg.SessionGap
	return cfg
}

// correlatorConfig 从运行配置构建关联配置
func (s *EnergyService) correlatorConfig() analysis.CorrelatorConfig {
	cfg := analysis.DefaultCorrelatorConfig()
	cfg.HeatingKwhThreshold = s.cfg.HeatingKwhThreshold
	cfg.HeatingWindow = s.cfg.HeatingWindow
	cfg.CheapRatePence = s.cfg.CheapRatePence
	cfg.PeakRatePence = s.cfg.PeakRatePence
	cfg.CheapHourEnd = s.cfg.CheapHourEnd
	return cfg
}

// DetectSessions 在指定时间区间内检测桑拿会话（不落库）
func (s *EnergyService) DetectSessions(ctx context.Context, start, end *time.Time) ([]models.SaunaSession, error) {
	readings, err := s.tempRepo.ListBySensor(ctx, s.cfg.SaunaSensorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load sauna readings: %w", err)
	}
	outdoor, err := s.tempRepo.ListBySensor(ctx, s.cfg.OutdoorSensorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load outdoor readings: %w", err)
	}

	detector := analysis.NewDetector(s.detectorConfig(), analysis.NewHourlyOutdoorIndex(outdoor))
	sessions := detector.Detect(readings)

	s.logger.Info("Detected sauna sessions",
		zap.Int("readings", len(readings)),
		zap.Int("sessions", len(sessions)))
	return sessions, nil
}

// RefreshSessions 全量重建会话并回填电量关联
//
// 1. 对全部温度数据重新检测
// 2. 清空后幂等写回
// 3. 对每个会话做加热关联分析并回填
func (s *EnergyService) RefreshSessions(ctx context.Context) (*models.RefreshResult, error) {
	sessions, err := s.DetectSessions(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.DeleteAll(ctx); err != nil {
		return nil, err
	}

	saved, err := s.sessionRepo.Save(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("save sessions: %w", err)
	}

	// 重新查询拿到数据库分配的 ID
	stored, err := s.sessionRepo.List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	var analyses []models.HeatingAnalysis
	for i := range stored {
		a, err := s.AnalyzeSession(ctx, &stored[i])
		if err != nil {
			s.logger.Warn("Failed to analyze session",
				zap.Int64("session_id", stored[i].ID),
				zap.Error(err))
			continue
		}
		if a == nil {
			// 窗口内没有达标的用电槽
			continue
		}
		analyses = append(analyses, *a)
	}

	updated, skipped, err := s.sessionRepo.UpdateElectricity(ctx, analyses)
	if err != nil {
		return nil, fmt.Errorf("update session electricity: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("Skipped analyses without session id", zap.Int("skipped", skipped))
	}

	result := &models.RefreshResult{
		Imported:   saved.Imported,
		Skipped:    saved.Skipped,
		KwhUpdated: updated,
	}

	s.logger.Info("Refreshed sauna sessions",
		zap.Int("imported", result.Imported),
		zap.Int("kwh_updated", result.KwhUpdated))
	if s.wsHub != nil {
		s.wsHub.BroadcastRefreshResult(ws.RefreshPayload{
			Imported:   result.Imported,
			Skipped:    result.Skipped,
			KwhUpdated: result.KwhUpdated,
		})
	}

	return result, nil
}

// AnalyzeSession 分析单个会话的实际加热用电
// 窗口内没有达标用电槽时返回 (nil, nil)
func (s *EnergyService) AnalyzeSession(ctx context.Context, session *models.SaunaSession) (*models.HeatingAnalysis, error) {
	cfg := s.correlatorConfig()
	windowStart := session.StartTime.Add(-cfg.LeadIn)
	windowEnd := session.StartTime.Add(cfg.HeatingWindow)

	total, err := s.elecRepo.ListBySource(ctx, s.cfg.TotalSource, &windowStart, &windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load total readings: %w", err)
	}
	sub, err := s.elecRepo.ListBySource(ctx, s.cfg.SubMeterSource, &windowStart, &windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load sub-meter readings: %w", err)
	}

	dayStart := time.Date(session.StartTime.Year(), session.StartTime.Month(), session.StartTime.Day(), 0, 0, 0, 0, session.StartTime.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	outdoor, err := s.tempRepo.ListBySensor(ctx, s.cfg.OutdoorSensorID, &dayStart, &dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load outdoor readings: %w", err)
	}

	var sessionID *int64
	if session.ID != 0 {
		id := session.ID
		sessionID = &id
	}

	correlator := analysis.NewCorrelator(cfg)
	return correlator.Analyze(session.StartTime, session.PeakTemperatureC, sessionID, total, sub, outdoor), nil
}

// ReloadTariffs 从 YAML 配置重载电价计划并落库
func (s *EnergyService) ReloadTariffs(ctx context.Context) (int, error) {
	tariffs, err := tariff.LoadFromYAML(s.cfg.TariffConfigPath)
	if err != nil {
		return 0, err
	}

	count, err := s.tariffRepo.Replace(ctx, tariffs)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.tariffs = tariffs
	s.mu.Unlock()

	s.logger.Info("Reloaded tariffs", zap.Int("count", count))
	return count, nil
}

// loadTariffs 获取电价计划，优先走缓存
func (s *EnergyService) loadTariffs(ctx context.Context) ([]models.Tariff, error) {
	s.mu.RLock()
	cached := s.tariffs
	s.mu.RUnlock()
	if len(cached) > 0 {
		return cached, nil
	}

	tariffs, err := s.tariffRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tariffs: %w", err)
	}

	s.mu.Lock()
	s.tariffs = tariffs
	s.mu.Unlock()
	return tariffs, nil
}

// UpdateCosts 给尚未计费的电量读数按费率回填费用
// 无法解析费率的读数跳过（比如生效区间外的历史数据）
func (s *EnergyService) UpdateCosts(ctx context.Context) (updated, skipped int, err error) {
	tariffs, err := s.loadTariffs(ctx)
	if err != nil {
		return 0, 0, err
	}

	readings, err := s.elecRepo.ListMissingCost(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, reading := range readings {
		rate, err := tariff.RateFor(tariffs, reading.IntervalStart)
		if err != nil {
			skipped++
			continue
		}
		cost := reading.ConsumptionKwh * rate
		if err := s.elecRepo.UpdateCost(ctx, reading.ID, cost); err != nil {
			return updated, skipped, err
		}
		updated++
	}

	s.logger.Info("Updated reading costs", zap.Int("updated", updated), zap.Int("skipped", skipped))
	return updated, skipped, nil
}

// broadcastImport 通过 WebSocket 广播导入结果，hub 未配置时忽略
func (s *EnergyService) broadcastImport(kind string, result *models.ImportResult) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.BroadcastImportResult(ws.ImportPayload{
		Kind:     kind,
		Imported: result.Imported,
		Skipped:  result.Skipped,
	})
}

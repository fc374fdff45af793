package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/langchou/homenergy/internal/collectors"
	"github.com/langchou/homenergy/internal/models"
	"github.com/langchou/homenergy/internal/tariff"
)

// ImportEonCSV 导入电网智能电表 CSV，重复区间自动跳过
// 有可用费率时在导入阶段直接计费，解析不到费率的留空待回填
func (s *EnergyService) ImportEonCSV(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	readings, err := collectors.ParseEonCSV(r)
	if err != nil {
		return nil, err
	}

	if tariffs, err := s.loadTariffs(ctx); err == nil && len(tariffs) > 0 {
		for i := range readings {
			rate, err := tariff.RateFor(tariffs, readings[i].IntervalStart)
			if err != nil {
				continue
			}
			cost := readings[i].ConsumptionKwh * rate
			readings[i].CostPence = &cost
		}
	}

	result, err := s.elecRepo.SaveBatch(ctx, readings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Imported electricity readings",
		zap.String("source", collectors.EonSource),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	s.broadcastImport("eon", result)
	return result, nil
}

// ImportHuumExport 导入 huum-cli 温度导出，重复采样自动跳过
func (s *EnergyService) ImportHuumExport(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	readings, err := collectors.ParseHuumTable(r)
	if err != nil {
		return nil, err
	}

	result, err := s.tempRepo.SaveBatch(ctx, readings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Imported temperature readings",
		zap.String("sensor", collectors.SaunaSensorID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	s.broadcastImport("huum", result)
	return result, nil
}

// ImportWeather 拉取并导入最近 N 天的逐小时室外温度
func (s *EnergyService) ImportWeather(ctx context.Context, days int) (*models.ImportResult, error) {
	client := collectors.NewOpenMeteoClient(s.cfg.Latitude, s.cfg.Longitude, s.cfg.Timezone)
	readings, err := client.FetchHourlyTemperatures(ctx, days)
	if err != nil {
		return nil, err
	}

	result, err := s.tempRepo.SaveBatch(ctx, readings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Imported weather readings",
		zap.Int("days", days),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	s.broadcastImport("weather", result)
	return result, nil
}

// CollectShelly 从本地 Shelly 分表采集一次累计电量
//
// 设备只报累计值，用基线差值换算区间用电：
// 首次采集只记录基线，之后每次采集生成一条 [上次, 本次] 的读数。
func (s *EnergyService) CollectShelly(ctx context.Context) (*models.ImportResult, error) {
	if s.cfg.ShellyIP == "" {
		return nil, fmt.Errorf("shelly local ip not configured")
	}

	client := collectors.NewShellyClient(s.cfg.ShellyIP, s.cfg.ShellyChannel)
	status, err := client.CurrentStatus(ctx)
	if err != nil {
		return nil, err
	}

	baseline, err := s.baselineRepo.Get(ctx, s.cfg.SubMeterSource)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{}
	if baseline != nil && status.TotalWh >= baseline.LastTotalWh {
		reading := models.ElectricityReading{
			Source:         s.cfg.SubMeterSource,
			IntervalStart:  collectors.AlignIntervalEnd(baseline.LastTime),
			IntervalEnd:    collectors.AlignIntervalEnd(status.Timestamp),
			ConsumptionKwh: (status.TotalWh - baseline.LastTotalWh) / 1000,
		}
		if reading.IntervalEnd.After(reading.IntervalStart) {
			result, err = s.elecRepo.SaveBatch(ctx, []models.ElectricityReading{reading})
			if err != nil {
				return nil, err
			}
		}
	} else if baseline != nil {
		// 计数器回绕（设备重置），丢弃本区间，只更新基线
		s.logger.Warn("Shelly energy counter reset detected",
			zap.Float64("last_total_wh", baseline.LastTotalWh),
			zap.Float64("total_wh", status.TotalWh))
	}

	if err := s.baselineRepo.Upsert(ctx, &models.CollectorBaseline{
		Source:      s.cfg.SubMeterSource,
		LastTotalWh: status.TotalWh,
		LastTime:    status.Timestamp,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Collected shelly reading",
		zap.Float64("power_w", status.PowerW),
		zap.Float64("total_wh", status.TotalWh),
		zap.Int("imported", result.Imported))
	return result, nil
}

package analysis

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"github.com/langchou/homenergy/internal/models"
)

// 检测器状态常量
const (
	StateIdle    = "idle"
	StateHeating = "heating"
)

// 事件常量
const (
	EventHeatUp   = "heat_up"
	EventCoolDown = "cool_down"
)

// DetectorConfig 会话检测阈值配置
type DetectorConfig struct {
	StartupDeltaC          float64       // 高于室外温度多少度视为潜在加热开始
	HeatingStartThresholdC float64       // 无室外数据时的兜底启动基线
	HotThresholdC          float64       // 低于此温度视为使用结束（达峰后）
	MinPeakTempC           float64       // 有效会话的最低峰值温度
	MinSessionDuration     time.Duration // 有效会话的最短时长
	CoolingThresholdC      float64       // 兜底结束阈值
	SessionGap             time.Duration // 兜底结束所需的采样间隔
}

// DefaultDetectorConfig 默认检测配置
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		StartupDeltaC:          5.0,
		HeatingStartThresholdC: 28,
		HotThresholdC:          60,
		MinPeakTempC:           65,
		MinSessionDuration:     30 * time.Minute,
		CoolingThresholdC:      40,
		SessionGap:             120 * time.Minute,
	}
}

// OutdoorLookup 室外温度查询能力，可替换为其它插值策略
type OutdoorLookup interface {
	// TemperatureNear 返回时间点附近的室外温度，没有数据时 ok 为 false
	TemperatureNear(ts time.Time) (temp float64, ok bool)
}

// HourlyOutdoorIndex 按整点索引的室外温度查询
type HourlyOutdoorIndex struct {
	byHour map[time.Time]float64
}

// NewHourlyOutdoorIndex 从室外读数构建按小时截断的索引
func NewHourlyOutdoorIndex(readings []models.TemperatureReading) *HourlyOutdoorIndex {
	idx := &HourlyOutdoorIndex{byHour: make(map[time.Time]float64, len(readings))}
	for _, r := range readings {
		hour := naive(r.Timestamp).Truncate(time.Hour)
		idx.byHour[hour] = r.TemperatureC
	}
	return idx
}

// TemperatureNear 按采样时间所在整点查询
func (idx *HourlyOutdoorIndex) TemperatureNear(ts time.Time) (float64, bool) {
	temp, ok := idx.byHour[naive(ts).Truncate(time.Hour)]
	return temp, ok
}

// Detector 桑拿会话检测器
type Detector struct {
	cfg     DetectorConfig
	outdoor OutdoorLookup
}

// NewDetector 创建检测器，outdoor 可为 nil
func NewDetector(cfg DetectorConfig, outdoor OutdoorLookup) *Detector {
	return &Detector{cfg: cfg, outdoor: outdoor}
}

// Detect 在按时间排序的温度序列上单遍检测会话
//
// 算法：
// 1. 温度超过（室外温度 + 启动增量）且下一个读数继续上升时开始会话（趋势确认）。
// 2. 会话内持续跟踪峰值。
// 3. 达到最低峰值后温度跌破 HotThreshold 时结束；
//    兜底：温度低于 CoolingThreshold 且与上一读数间隔超过 SessionGap。
func (d *Detector) Detect(readings []models.TemperatureReading) []models.SaunaSession {
	if len(readings) == 0 {
		return nil
	}

	ctx := context.Background()
	machine := fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventHeatUp, Src: []string{StateIdle}, Dst: StateHeating},
			{Name: EventCoolDown, Src: []string{StateHeating}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)

	var sessions []models.SaunaSession
	var sessionStart time.Time
	peakTemp := 0.0
	hitPeak := false

	for i, reading := range readings {
		temp := reading.TemperatureC
		ts := naive(reading.Timestamp)

		if machine.Current() == StateIdle {
			startThreshold := d.startThreshold(reading.Timestamp)

			// 需要至少一个后续读数做趋势确认
			if i >= len(readings)-1 {
				continue
			}
			nextTemp := readings[i+1].TemperatureC
			if temp > startThreshold && nextTemp > temp {
				_ = machine.Event(ctx, EventHeatUp)
				sessionStart = ts
				peakTemp = temp
				hitPeak = false
			}
			continue
		}

		// 会话进行中
		if temp > peakTemp {
			peakTemp = temp
		}
		if peakTemp >= d.cfg.MinPeakTempC {
			hitPeak = true
		}

		shouldEnd := hitPeak && temp < d.cfg.HotThresholdC
		if !shouldEnd && temp < d.cfg.CoolingThresholdC && i > 0 {
			// 数据缺口中的降温尾段
			gap := ts.Sub(naive(readings[i-1].Timestamp))
			if gap >= d.cfg.SessionGap {
				shouldEnd = true
			}
		}

		if shouldEnd {
			if s, ok := d.closeSession(sessionStart, ts, peakTemp, hitPeak); ok {
				sessions = append(sessions, s)
			}
			_ = machine.Event(ctx, EventCoolDown)
			peakTemp = 0.0
			hitPeak = false
		}
	}

	// 数据末尾仍在会话中
	if machine.Current() == StateHeating && hitPeak {
		end := naive(readings[len(readings)-1].Timestamp)
		if s, ok := d.closeSession(sessionStart, end, peakTemp, true); ok {
			sessions = append(sessions, s)
		}
	}

	return sessions
}

// startThreshold 计算启动阈值：室外温度 + 增量，缺数据时退化为固定基线
func (d *Detector) startThreshold(ts time.Time) float64 {
	outdoorTemp := d.cfg.HeatingStartThresholdC - d.cfg.StartupDeltaC
	if d.outdoor != nil {
		if temp, ok := d.outdoor.TemperatureNear(ts); ok {
			outdoorTemp = temp
		}
	}
	return outdoorTemp + d.cfg.StartupDeltaC
}

// closeSession 按准入条件生成会话记录，不满足则静默丢弃
func (d *Detector) closeSession(start, end time.Time, peak float64, hitPeak bool) (models.SaunaSession, bool) {
	duration := end.Sub(start)
	if !hitPeak || duration < d.cfg.MinSessionDuration {
		return models.SaunaSession{}, false
	}
	return models.SaunaSession{
		StartTime:        start,
		EndTime:          end,
		DurationMinutes:  int(duration / time.Minute),
		PeakTemperatureC: peak,
	}, true
}

// naive 去掉时区信息，避免混合时区比较失败
func naive(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

package analysis

import (
	"math"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// CorrelatorConfig 加热关联分析配置
type CorrelatorConfig struct {
	HeatingKwhThreshold float64       // 单槽净用电超过此值视为加热中
	LeadIn              time.Duration // 窗口起点提前量
	HeatingWindow       time.Duration // 会话开始后的查找窗口
	CheapRatePence      float64       // 低谷费率（便士/kWh）
	PeakRatePence       float64       // 高峰费率（便士/kWh）
	CheapHourEnd        int           // 低谷时段结束整点
	SlotMinutes         int           // 计量槽宽度（分钟）
	KwhPrecision        int           // 电量舍入小数位
	CostPrecision       int           // 费用舍入小数位
}

// DefaultCorrelatorConfig 默认关联配置
// 9kW 加热器满载约 4.5 kWh/半小时，阈值取 3.0 以容忍波动
func DefaultCorrelatorConfig() CorrelatorConfig {
	return CorrelatorConfig{
		HeatingKwhThreshold: 3.0,
		LeadIn:              30 * time.Minute,
		HeatingWindow:       180 * time.Minute,
		CheapRatePence:      7,
		PeakRatePence:       25,
		CheapHourEnd:        7,
		SlotMinutes:         30,
		KwhPrecision:        1,
		CostPrecision:       0,
	}
}

// NetSlot 单个计量槽的净用电
type NetSlot struct {
	IntervalStart time.Time
	NetKwh        float64
}

// MergeNet 按 interval_start 对齐两个电量序列，计算净用电
// 子回路缺失对应槽时按 0 处理，结果保持 total 的顺序
func MergeNet(total, sub []models.ElectricityReading) []NetSlot {
	subByStart := make(map[time.Time]float64, len(sub))
	for _, r := range sub {
		subByStart[naive(r.IntervalStart)] = r.ConsumptionKwh
	}

	slots := make([]NetSlot, 0, len(total))
	for _, r := range total {
		start := naive(r.IntervalStart)
		slots = append(slots, NetSlot{
			IntervalStart: start,
			NetKwh:        r.ConsumptionKwh - subByStart[start],
		})
	}
	return slots
}

// Correlator 会话加热关联分析器
type Correlator struct {
	cfg CorrelatorConfig
}

// NewCorrelator 创建关联分析器
func NewCorrelator(cfg CorrelatorConfig) *Correlator {
	return &Correlator{cfg: cfg}
}

// Analyze 分析一次会话的实际加热用电
//
// 净用电 = 总表 - 子回路分表，净值超过阈值的槽视为加热中。
// 窗口内没有任何槽达标时返回 nil（未检测到加热，不是错误）。
func (c *Correlator) Analyze(
	sessionStart time.Time,
	peakTemperatureC float64,
	sessionID *int64,
	total, sub []models.ElectricityReading,
	outdoor []models.TemperatureReading,
) *models.HeatingAnalysis {
	start := naive(sessionStart)
	windowStart := start.Add(-c.cfg.LeadIn)
	windowEnd := start.Add(c.cfg.HeatingWindow)

	totalKwh := 0.0
	cheapKwh := 0.0
	peakKwh := 0.0
	cheapSlots := 0
	peakSlots := 0

	for _, slot := range MergeNet(total, sub) {
		if slot.IntervalStart.Before(windowStart) || !slot.IntervalStart.Before(windowEnd) {
			continue
		}
		if slot.NetKwh <= c.cfg.HeatingKwhThreshold {
			continue
		}

		if slot.IntervalStart.Hour() < c.cfg.CheapHourEnd {
			cheapKwh += slot.NetKwh
			cheapSlots++
		} else {
			peakKwh += slot.NetKwh
			peakSlots++
		}
		totalKwh += slot.NetKwh
	}

	if cheapSlots+peakSlots == 0 {
		return nil
	}

	costPence := cheapKwh*c.cfg.CheapRatePence + peakKwh*c.cfg.PeakRatePence

	return &models.HeatingAnalysis{
		SessionID:           sessionID,
		StartTime:           sessionStart,
		PeakTemperatureC:    peakTemperatureC,
		OutsideTemperatureC: meanForDate(outdoor, start),
		HeatingMinutes:      (cheapSlots + peakSlots) * c.cfg.SlotMinutes,
		TotalKwh:            roundTo(totalKwh, c.cfg.KwhPrecision),
		CheapKwh:            roundTo(cheapKwh, c.cfg.KwhPrecision),
		PeakKwh:             roundTo(peakKwh, c.cfg.KwhPrecision),
		CostPence:           roundTo(costPence, c.cfg.CostPrecision),
		CheapSlots:          cheapSlots,
		PeakSlots:           peakSlots,
	}
}

// meanForDate 同一自然日室外读数的平均温度，无数据时返回 nil
func meanForDate(readings []models.TemperatureReading, day time.Time) *float64 {
	y, m, d := day.Date()
	sum := 0.0
	count := 0
	for _, r := range readings {
		ry, rm, rd := naive(r.Timestamp).Date()
		if ry == y && rm == m && rd == d {
			sum += r.TemperatureC
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}

// roundTo 四舍五入（远离零）到指定小数位
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

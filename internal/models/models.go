package models

import "time"

// TemperatureReading 温度采样记录
type TemperatureReading struct {
	ID           int64     `json:"id" db:"id"`
	SensorID     string    `json:"sensor_id" db:"sensor_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	TemperatureC float64   `json:"temperature_c" db:"temperature_c"` // °C
}

// ElectricityReading 半小时电量记录
type ElectricityReading struct {
	ID             int64     `json:"id" db:"id"`
	Source         string    `json:"source" db:"source"`
	IntervalStart  time.Time `json:"interval_start" db:"interval_start"`
	IntervalEnd    time.Time `json:"interval_end" db:"interval_end"`
	ConsumptionKwh float64   `json:"consumption_kwh" db:"consumption_kwh"` // kWh
	CostPence      *float64  `json:"cost_pence,omitempty" db:"cost_pence"` // 费用（便士），按费率计算后填充
}

// TariffRate 费率时段（一个电价计划内）
type TariffRate struct {
	ID              int64   `json:"id" db:"id"`
	TariffID        int64   `json:"tariff_id" db:"tariff_id"`
	StartTime       string  `json:"start_time" db:"start_time"` // HH:MM
	EndTime         string  `json:"end_time" db:"end_time"`     // HH:MM，支持跨午夜
	RatePencePerKwh float64 `json:"rate_pence_per_kwh" db:"rate_pence_per_kwh"`
	Days            string  `json:"days" db:"days"` // '*' = 所有, 'weekdays', 'weekends'
}

// Tariff 电价计划（含生效区间）
type Tariff struct {
	ID        int64        `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	ValidFrom time.Time    `json:"valid_from" db:"valid_from"`
	ValidTo   *time.Time   `json:"valid_to,omitempty" db:"valid_to"`
	Rates     []TariffRate `json:"rates"`
}

// SaunaSession 检测出的桑拿会话
type SaunaSession struct {
	ID               int64     `json:"id" db:"id"`
	StartTime        time.Time `json:"start_time" db:"start_time"`
	EndTime          time.Time `json:"end_time" db:"end_time"`
	DurationMinutes  int       `json:"duration_minutes" db:"duration_minutes"`
	PeakTemperatureC float64   `json:"peak_temperature_c" db:"peak_temperature_c"`
	// 电量关联字段（由加热分析回填）
	EstimatedKwh   *float64 `json:"estimated_kwh,omitempty" db:"estimated_kwh"`
	CheapKwh       *float64 `json:"cheap_kwh,omitempty" db:"cheap_kwh"`
	PeakKwh        *float64 `json:"peak_kwh,omitempty" db:"peak_kwh"`
	HeatingMinutes *int     `json:"heating_minutes,omitempty" db:"heating_minutes"`
	CostPence      *float64 `json:"cost_pence,omitempty" db:"cost_pence"`
}

// HeatingAnalysis 基于电量数据的会话加热分析（临时结果，回填到 SaunaSession）
type HeatingAnalysis struct {
	SessionID           *int64    `json:"session_id,omitempty"`
	StartTime           time.Time `json:"start_time"`
	PeakTemperatureC    float64   `json:"peak_temperature_c"`
	OutsideTemperatureC *float64  `json:"outside_temperature_c,omitempty"`

	HeatingMinutes int     `json:"heating_minutes"` // 实际加热时长
	TotalKwh       float64 `json:"total_kwh"`
	CheapKwh       float64 `json:"cheap_kwh"` // 低谷时段用电
	PeakKwh        float64 `json:"peak_kwh"`  // 高峰时段用电
	CostPence      float64 `json:"cost_pence"`

	CheapSlots int `json:"cheap_slots"`
	PeakSlots  int `json:"peak_slots"`
}

// CostPounds 费用（英镑）
func (a *HeatingAnalysis) CostPounds() float64 {
	return a.CostPence / 100
}

// CollectorBaseline 本地采集器的累计电量基线
type CollectorBaseline struct {
	Source      string    `json:"source" db:"source"`
	LastTotalWh float64   `json:"last_total_wh" db:"last_total_wh"`
	LastTime    time.Time `json:"last_timestamp" db:"last_timestamp"`
}

// ImportResult 导入结果统计
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// RefreshResult 会话全量重建结果
type RefreshResult struct {
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	KwhUpdated int `json:"kwh_updated"`
}

// SessionSummary 汇总中的单个会话信息
type SessionSummary struct {
	Date            string  `json:"date,omitempty"`
	Start           string  `json:"start"`
	End             string  `json:"end,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	PeakTempC       float64 `json:"peak_temp_c"`
}

// PeakHalfHour 峰值半小时
type PeakHalfHour struct {
	Time *time.Time `json:"time"`
	Kwh  float64    `json:"kwh"`
}

// DailySummary 单日用电汇总
type DailySummary struct {
	Date             string           `json:"date"`
	TotalKwh         float64          `json:"total_kwh"`
	TotalCostPence   float64          `json:"total_cost_pence"`
	TotalCostPounds  float64          `json:"total_cost_pounds"`
	CheapRateKwh     float64          `json:"cheap_rate_kwh"`
	CheapRatePercent float64          `json:"cheap_rate_percent"`
	PeakHalfHour     PeakHalfHour     `json:"peak_half_hour"`
	ReadingsCount    int              `json:"readings_count"`
	SaunaSessions    []SessionSummary `json:"sauna_sessions"`
}

// PeriodTotals 区间总量
type PeriodTotals struct {
	Kwh        float64 `json:"kwh"`
	CostPence  float64 `json:"cost_pence"`
	CostPounds float64 `json:"cost_pounds"`
}

// DailyBreakdown 按日明细
type DailyBreakdown struct {
	Date       string  `json:"date"`
	Kwh        float64 `json:"kwh"`
	CostPounds float64 `json:"cost_pounds"`
}

// SubCircuitDaily 子回路按日占比明细
type SubCircuitDaily struct {
	Date       string  `json:"date"`
	SubKwh     float64 `json:"sub_kwh"`
	TotalKwh   float64 `json:"total_kwh"`
	SubPercent float64 `json:"sub_percent"`
}

// SubCircuitSummary 子回路（分表）汇总
type SubCircuitSummary struct {
	Kwh            float64           `json:"kwh"`
	CostPounds     float64           `json:"cost_pounds"`
	PercentOfTotal float64           `json:"percent_of_total"`
	DailyBreakdown []SubCircuitDaily `json:"daily_breakdown"`
}

// SaunaPeriodSummary 区间内桑拿汇总
type SaunaPeriodSummary struct {
	SessionCount         int              `json:"session_count"`
	TotalDurationMinutes int              `json:"total_duration_minutes"`
	Sessions             []SessionSummary `json:"sessions"`
}

// PeriodSummary 时间区间汇总报告
type PeriodSummary struct {
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Days  int    `json:"days"`
	} `json:"period"`
	Totals   PeriodTotals `json:"totals"`
	Averages struct {
		DailyKwh        float64 `json:"daily_kwh"`
		DailyCostPounds float64 `json:"daily_cost_pounds"`
	} `json:"averages"`
	SubCircuit     SubCircuitSummary  `json:"sub_circuit"`
	DailyBreakdown []DailyBreakdown   `json:"daily_breakdown"`
	Sauna          SaunaPeriodSummary `json:"sauna"`
}

// DBStats 数据库统计
type DBStats struct {
	ElectricityReadings TableStats       `json:"electricity_readings"`
	ElectricityBySource map[string]int64 `json:"electricity_by_source"`
	TemperatureReadings TableStats       `json:"temperature_readings"`
	SaunaSessions       int64            `json:"sauna_sessions"`
	Tariffs             int64            `json:"tariffs"`
}

// TableStats 单表统计
type TableStats struct {
	Count    int64      `json:"count"`
	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`
}

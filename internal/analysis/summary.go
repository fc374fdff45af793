package analysis

import (
	"sort"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// BuildDailySummary 汇总单日电量与桑拿会话
func BuildDailySummary(
	date time.Time,
	readings []models.ElectricityReading,
	sessions []models.SaunaSession,
	cheapHourEnd int,
) models.DailySummary {
	totalKwh := 0.0
	totalCost := 0.0
	cheapKwh := 0.0

	var peakReading *models.ElectricityReading
	peakKwh := 0.0

	for i := range readings {
		r := &readings[i]
		totalKwh += r.ConsumptionKwh
		if r.CostPence != nil {
			totalCost += *r.CostPence
		}
		if naive(r.IntervalStart).Hour() < cheapHourEnd {
			cheapKwh += r.ConsumptionKwh
		}
		if r.ConsumptionKwh > peakKwh {
			peakKwh = r.ConsumptionKwh
			peakReading = r
		}
	}

	summary := models.DailySummary{
		Date:            date.Format("2006-01-02"),
		TotalKwh:        roundTo(totalKwh, 2),
		TotalCostPence:  roundTo(totalCost, 1),
		TotalCostPounds: roundTo(totalCost/100, 2),
		CheapRateKwh:    roundTo(cheapKwh, 2),
		ReadingsCount:   len(readings),
		PeakHalfHour:    models.PeakHalfHour{Kwh: roundTo(peakKwh, 2)},
		SaunaSessions:   []models.SessionSummary{},
	}
	if totalKwh > 0 {
		summary.CheapRatePercent = roundTo(cheapKwh/totalKwh*100, 1)
	}
	if peakReading != nil {
		ts := peakReading.IntervalStart
		summary.PeakHalfHour.Time = &ts
	}

	for _, s := range sessions {
		summary.SaunaSessions = append(summary.SaunaSessions, models.SessionSummary{
			Start:           s.StartTime.Format("15:04"),
			End:             s.EndTime.Format("15:04"),
			DurationMinutes: s.DurationMinutes,
			PeakTempC:       s.PeakTemperatureC,
		})
	}

	return summary
}

// BuildPeriodSummary 汇总时间区间内的总表、子回路与桑拿会话
func BuildPeriodSummary(
	start, end time.Time,
	total []models.ElectricityReading,
	sub []models.ElectricityReading,
	sessions []models.SaunaSession,
) models.PeriodSummary {
	totalKwh := 0.0
	totalCost := 0.0
	dailyKwh := make(map[string]float64)
	dailyCost := make(map[string]float64)

	for _, r := range total {
		day := naive(r.IntervalStart).Format("2006-01-02")
		totalKwh += r.ConsumptionKwh
		dailyKwh[day] += r.ConsumptionKwh
		if r.CostPence != nil {
			totalCost += *r.CostPence
			dailyCost[day] += *r.CostPence
		}
	}

	subKwh := 0.0
	subCost := 0.0
	subDaily := make(map[string]float64)
	for _, r := range sub {
		day := naive(r.IntervalStart).Format("2006-01-02")
		subKwh += r.ConsumptionKwh
		subDaily[day] += r.ConsumptionKwh
		if r.CostPence != nil {
			subCost += *r.CostPence
		}
	}

	days := make([]string, 0, len(dailyKwh))
	for day := range dailyKwh {
		days = append(days, day)
	}
	sort.Strings(days)

	var summary models.PeriodSummary
	summary.Period.Start = start.Format("2006-01-02")
	summary.Period.End = end.Format("2006-01-02")
	summary.Period.Days = len(days)

	summary.Totals = models.PeriodTotals{
		Kwh:        roundTo(totalKwh, 2),
		CostPence:  roundTo(totalCost, 1),
		CostPounds: roundTo(totalCost/100, 2),
	}
	if len(days) > 0 {
		summary.Averages.DailyKwh = roundTo(totalKwh/float64(len(days)), 2)
		summary.Averages.DailyCostPounds = roundTo(totalCost/100/float64(len(days)), 2)
	}

	summary.SubCircuit = models.SubCircuitSummary{
		Kwh:            roundTo(subKwh, 2),
		CostPounds:     roundTo(subCost/100, 2),
		DailyBreakdown: []models.SubCircuitDaily{},
	}
	if totalKwh > 0 {
		summary.SubCircuit.PercentOfTotal = roundTo(subKwh/totalKwh*100, 1)
	}

	summary.DailyBreakdown = []models.DailyBreakdown{}
	for _, day := range days {
		kwh := dailyKwh[day]
		summary.DailyBreakdown = append(summary.DailyBreakdown, models.DailyBreakdown{
			Date:       day,
			Kwh:        roundTo(kwh, 2),
			CostPounds: roundTo(dailyCost[day]/100, 2),
		})

		entry := models.SubCircuitDaily{
			Date:     day,
			SubKwh:   roundTo(subDaily[day], 2),
			TotalKwh: roundTo(kwh, 2),
		}
		if kwh > 0 {
			entry.SubPercent = roundTo(subDaily[day]/kwh*100, 1)
		}
		summary.SubCircuit.DailyBreakdown = append(summary.SubCircuit.DailyBreakdown, entry)
	}

	summary.Sauna = models.SaunaPeriodSummary{
		SessionCount: len(sessions),
		Sessions:     []models.SessionSummary{},
	}
	for _, s := range sessions {
		summary.Sauna.TotalDurationMinutes += s.DurationMinutes
		summary.Sauna.Sessions = append(summary.Sauna.Sessions, models.SessionSummary{
			Date:            s.StartTime.Format("2006-01-02"),
			Start:           s.StartTime.Format("15:04"),
			DurationMinutes: s.DurationMinutes,
			PeakTempC:       s.PeakTemperatureC,
		})
	}

	return summary
}

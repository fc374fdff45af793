package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/homenergy/internal/models"
)

func costReading(start string, kwh, costPence float64) models.ElectricityReading {
	r := elecReading("eon", start, kwh)
	r.CostPence = &costPence
	return r
}

func TestBuildDailySummary(t *testing.T) {
	date := mustParse(t, "2026-01-15 00:00")
	readings := []models.ElectricityReading{
		costReading("2026-01-15 02:00", 4.0, 28.0),
		costReading("2026-01-15 06:30", 2.0, 14.0),
		costReading("2026-01-15 18:00", 6.0, 150.0),
	}
	sessions := []models.SaunaSession{
		{
			StartTime:        mustParse(t, "2026-01-15 06:05"),
			EndTime:          mustParse(t, "2026-01-15 07:20"),
			DurationMinutes:  75,
			PeakTemperatureC: 78,
		},
	}

	summary := BuildDailySummary(date, readings, sessions, 7)

	assert.Equal(t, "2026-01-15", summary.Date)
	assert.Equal(t, 12.0, summary.TotalKwh)
	assert.Equal(t, 192.0, summary.TotalCostPence)
	assert.Equal(t, 1.92, summary.TotalCostPounds)
	assert.Equal(t, 6.0, summary.CheapRateKwh)
	assert.Equal(t, 50.0, summary.CheapRatePercent)
	assert.Equal(t, 3, summary.ReadingsCount)

	assert.Equal(t, 6.0, summary.PeakHalfHour.Kwh)
	require.NotNil(t, summary.PeakHalfHour.Time)
	assert.Equal(t, "18:00", summary.PeakHalfHour.Time.Format("15:04"))

	require.Len(t, summary.SaunaSessions, 1)
	assert.Equal(t, "06:05", summary.SaunaSessions[0].Start)
	assert.Equal(t, "07:20", summary.SaunaSessions[0].End)
	assert.Equal(t, 75, summary.SaunaSessions[0].DurationMinutes)
}

func TestBuildDailySummaryEmpty(t *testing.T) {
	summary := BuildDailySummary(mustParse(t, "2026-01-15 00:00"), nil, nil, 7)

	assert.Equal(t, 0.0, summary.TotalKwh)
	assert.Equal(t, 0.0, summary.CheapRatePercent)
	assert.Nil(t, summary.PeakHalfHour.Time)
	assert.Empty(t, summary.SaunaSessions)
}

func TestBuildPeriodSummary(t *testing.T) {
	start := mustParse(t, "2026-01-15 00:00")
	end := mustParse(t, "2026-01-17 00:00")

	total := []models.ElectricityReading{
		costReading("2026-01-15 06:00", 10.0, 100.0),
		costReading("2026-01-15 18:00", 10.0, 250.0),
		costReading("2026-01-16 06:00", 20.0, 200.0),
	}
	sub := []models.ElectricityReading{
		elecReading("shelly_studio_phase", "2026-01-15 06:00", 5.0),
		elecReading("shelly_studio_phase", "2026-01-16 06:00", 5.0),
	}
	sessions := []models.SaunaSession{
		{StartTime: mustParse(t, "2026-01-15 06:05"), DurationMinutes: 80, PeakTemperatureC: 75},
		{StartTime: mustParse(t, "2026-01-16 06:10"), DurationMinutes: 60, PeakTemperatureC: 71},
	}

	summary := BuildPeriodSummary(start, end, total, sub, sessions)

	assert.Equal(t, "2026-01-15", summary.Period.Start)
	assert.Equal(t, "2026-01-17", summary.Period.End)
	assert.Equal(t, 2, summary.Period.Days)

	assert.Equal(t, 40.0, summary.Totals.Kwh)
	assert.Equal(t, 550.0, summary.Totals.CostPence)
	assert.Equal(t, 5.5, summary.Totals.CostPounds)
	assert.Equal(t, 20.0, summary.Averages.DailyKwh)
	assert.Equal(t, 2.75, summary.Averages.DailyCostPounds)

	assert.Equal(t, 10.0, summary.SubCircuit.Kwh)
	assert.Equal(t, 25.0, summary.SubCircuit.PercentOfTotal)

	require.Len(t, summary.DailyBreakdown, 2)
	assert.Equal(t, "2026-01-15", summary.DailyBreakdown[0].Date)
	assert.Equal(t, 20.0, summary.DailyBreakdown[0].Kwh)
	assert.Equal(t, 3.5, summary.DailyBreakdown[0].CostPounds)

	require.Len(t, summary.SubCircuit.DailyBreakdown, 2)
	assert.Equal(t, 25.0, summary.SubCircuit.DailyBreakdown[0].SubPercent)

	assert.Equal(t, 2, summary.Sauna.SessionCount)
	assert.Equal(t, 140, summary.Sauna.TotalDurationMinutes)
	require.Len(t, summary.Sauna.Sessions, 2)
	assert.Equal(t, "2026-01-15", summary.Sauna.Sessions[0].Date)
	assert.Equal(t, "06:05", summary.Sauna.Sessions[0].Start)
}

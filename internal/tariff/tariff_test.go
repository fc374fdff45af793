package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/homenergy/internal/models"
)

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func at(s string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func testTariffs() []models.Tariff {
	oldEnd := date("2026-01-01")
	return []models.Tariff{
		{
			Name:      "standard-2025",
			ValidFrom: date("2025-01-01"),
			ValidTo:   &oldEnd,
			Rates: []models.TariffRate{
				{StartTime: "00:00", EndTime: "00:00", RatePencePerKwh: 30, Days: "*"},
			},
		},
		{
			Name:      "off-peak-2026",
			ValidFrom: date("2026-01-01"),
			Rates: []models.TariffRate{
				{StartTime: "23:00", EndTime: "07:00", RatePencePerKwh: 7, Days: "*"},
				{StartTime: "07:00", EndTime: "23:00", RatePencePerKwh: 25, Days: "*"},
			},
		},
	}
}

func TestActiveTariffPicksLatestValidFrom(t *testing.T) {
	active, err := ActiveTariff(testTariffs(), at("2026-03-15 12:00"))
	require.NoError(t, err)
	assert.Equal(t, "off-peak-2026", active.Name)

	active, err = ActiveTariff(testTariffs(), at("2025-06-01 12:00"))
	require.NoError(t, err)
	assert.Equal(t, "standard-2025", active.Name)
}

func TestActiveTariffValidToExclusive(t *testing.T) {
	// valid_to 当刻起旧计划失效
	active, err := ActiveTariff(testTariffs(), at("2026-01-01 00:00"))
	require.NoError(t, err)
	assert.Equal(t, "off-peak-2026", active.Name)
}

func TestActiveTariffNoneBeforeAnyValidFrom(t *testing.T) {
	_, err := ActiveTariff(testTariffs(), at("2024-06-01 12:00"))
	assert.ErrorIs(t, err, ErrNoActiveTariff)
}

func TestRateForOvernightRange(t *testing.T) {
	tariffs := testTariffs()

	// 跨午夜低谷段的两端
	rate, err := RateFor(tariffs, at("2026-03-15 23:30"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)

	rate, err = RateFor(tariffs, at("2026-03-15 03:00"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)

	// 区间右端不含
	rate, err = RateFor(tariffs, at("2026-03-15 07:00"))
	require.NoError(t, err)
	assert.Equal(t, 25.0, rate)

	rate, err = RateFor(tariffs, at("2026-03-15 06:59"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)
}

func TestRateForDayFilter(t *testing.T) {
	tariff := &models.Tariff{
		Name:      "weekend-saver",
		ValidFrom: date("2026-01-01"),
		Rates: []models.TariffRate{
			{StartTime: "00:00", EndTime: "00:00", RatePencePerKwh: 12, Days: "weekends"},
			{StartTime: "00:00", EndTime: "00:00", RatePencePerKwh: 28, Days: "weekdays"},
		},
	}

	// 2026-03-14 是周六
	rate, err := RateForTariff(tariff, at("2026-03-14 12:00"))
	require.NoError(t, err)
	assert.Equal(t, 12.0, rate)

	// 2026-03-16 是周一
	rate, err = RateForTariff(tariff, at("2026-03-16 12:00"))
	require.NoError(t, err)
	assert.Equal(t, 28.0, rate)
}

func TestRateForFullDayWindow(t *testing.T) {
	tariff := &models.Tariff{
		Name:      "flat",
		ValidFrom: date("2026-01-01"),
		Rates: []models.TariffRate{
			{StartTime: "00:00", EndTime: "00:00", RatePencePerKwh: 30, Days: "*"},
		},
	}

	// start == end 覆盖全天，任何时刻都能匹配
	for _, ts := range []string{"2026-03-16 00:00", "2026-03-16 12:00", "2026-03-16 23:59"} {
		rate, err := RateForTariff(tariff, at(ts))
		require.NoError(t, err)
		assert.Equal(t, 30.0, rate)
	}
}

func TestRateForFirstMatchWins(t *testing.T) {
	tariff := &models.Tariff{
		Name:      "layered",
		ValidFrom: date("2026-01-01"),
		Rates: []models.TariffRate{
			{StartTime: "00:00", EndTime: "07:00", RatePencePerKwh: 7, Days: "*"},
			{StartTime: "00:00", EndTime: "00:00", RatePencePerKwh: 25, Days: "*"},
		},
	}

	rate, err := RateForTariff(tariff, at("2026-03-16 05:00"))
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)
}

func TestRateForNoMatchingRate(t *testing.T) {
	tariff := &models.Tariff{
		Name:      "partial",
		ValidFrom: date("2026-01-01"),
		Rates: []models.TariffRate{
			{StartTime: "07:00", EndTime: "23:00", RatePencePerKwh: 25, Days: "weekdays"},
		},
	}

	_, err := RateForTariff(tariff, at("2026-03-14 12:00"))
	assert.ErrorIs(t, err, ErrNoMatchingRate)
}

func TestParseYAMLConfig(t *testing.T) {
	data := []byte(`
tariffs:
  - name: off-peak-2026
    valid_from: "2026-01-01"
    rates:
      - start: "23:00"
        end: "07:00"
        rate: 7
      - start: "07:00"
        end: "23:00"
        rate: 25
        days: weekdays
  - name: standard-2025
    valid_from: "2025-01-01"
    valid_to: "2026-01-01"
    rates:
      - start: "00:00"
        end: "00:00"
        rate: 30
`)

	tariffs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, tariffs, 2)

	assert.Equal(t, "off-peak-2026", tariffs[0].Name)
	assert.Nil(t, tariffs[0].ValidTo)
	require.Len(t, tariffs[0].Rates, 2)
	// 未指定 days 默认所有
	assert.Equal(t, "*", tariffs[0].Rates[0].Days)
	assert.Equal(t, "weekdays", tariffs[0].Rates[1].Days)

	require.NotNil(t, tariffs[1].ValidTo)
	assert.Equal(t, date("2026-01-01"), *tariffs[1].ValidTo)
}

func TestParseYAMLInvalidTimestamp(t *testing.T) {
	data := []byte(`
tariffs:
  - name: broken
    valid_from: "not-a-date"
`)
	_, err := Parse(data)
	assert.Error(t, err)
}

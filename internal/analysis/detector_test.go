package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/homenergy/internal/models"
)

func saunaReading(ts string, temp float64) models.TemperatureReading {
	parsed, err := time.Parse("2006-01-02 15:04", ts)
	if err != nil {
		panic(err)
	}
	return models.TemperatureReading{
		SensorID:     "sauna",
		Timestamp:    parsed,
		TemperatureC: temp,
	}
}

func outdoorAt(ts string, temp float64) models.TemperatureReading {
	r := saunaReading(ts, temp)
	r.SensorID = "outside_temperature"
	return r
}

// constantOutdoor 固定温度的室外查询
type constantOutdoor struct {
	temp float64
}

func (o constantOutdoor) TemperatureNear(time.Time) (float64, bool) {
	return o.temp, true
}

func TestDetectBasicSession(t *testing.T) {
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 16),
		saunaReading("2026-01-15 10:10", 25),
		saunaReading("2026-01-15 11:00", 70),
		saunaReading("2026-01-15 11:10", 59),
		saunaReading("2026-01-15 11:20", 50),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "2026-01-15 10:05", s.StartTime.Format("2006-01-02 15:04"))
	assert.Equal(t, "2026-01-15 11:10", s.EndTime.Format("2006-01-02 15:04"))
	assert.Equal(t, 65, s.DurationMinutes)
	assert.Equal(t, 70.0, s.PeakTemperatureC)
}

func TestDetectIgnoresLowPeak(t *testing.T) {
	// 最高 50°C，没达到有效峰值，不算会话
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 20),
		saunaReading("2026-01-15 10:30", 45),
		saunaReading("2026-01-15 11:00", 50),
		saunaReading("2026-01-15 11:30", 48),
		saunaReading("2026-01-15 12:00", 42),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	assert.Empty(t, sessions)
}

func TestDetectRequiresRisingTrend(t *testing.T) {
	// 单点超过阈值但随后下降，不触发会话（日照噪声）
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 18),
		saunaReading("2026-01-15 10:10", 12),
		saunaReading("2026-01-15 10:15", 11),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	assert.Empty(t, sessions)
}

func TestDetectStartsAtSecondCandidate(t *testing.T) {
	// 第一次越过阈值后下一读数下降（假启动），会话从第二个上升的越界点开始
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 18),
		saunaReading("2026-01-15 10:10", 14),
		saunaReading("2026-01-15 10:15", 22),
		saunaReading("2026-01-15 10:45", 50),
		saunaReading("2026-01-15 11:15", 70),
		saunaReading("2026-01-15 11:45", 55),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	require.Len(t, sessions, 1)
	assert.Equal(t, "10:15", sessions[0].StartTime.Format("15:04"))
	assert.Equal(t, "11:45", sessions[0].EndTime.Format("15:04"))
	assert.Equal(t, 70.0, sessions[0].PeakTemperatureC)
}

func TestDetectIsIdempotent(t *testing.T) {
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 16),
		saunaReading("2026-01-15 10:10", 25),
		saunaReading("2026-01-15 11:00", 70),
		saunaReading("2026-01-15 11:10", 59),
		saunaReading("2026-01-15 11:20", 50),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	first := detector.Detect(readings)
	second := detector.Detect(readings)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
}

func TestDetectWithoutOutdoorData(t *testing.T) {
	// 没有室外数据时退化为固定启动基线
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 20),
		saunaReading("2026-01-15 10:10", 35),
		saunaReading("2026-01-15 10:30", 55),
		saunaReading("2026-01-15 11:00", 72),
		saunaReading("2026-01-15 11:30", 55),
	}

	detector := NewDetector(DefaultDetectorConfig(), nil)
	sessions := detector.Detect(readings)

	require.Len(t, sessions, 1)
	assert.Equal(t, "10:10", sessions[0].StartTime.Format("15:04"))
	assert.Equal(t, 72.0, sessions[0].PeakTemperatureC)
}

func TestDetectEmptyInput(t *testing.T) {
	detector := NewDetector(DefaultDetectorConfig(), nil)
	assert.Nil(t, detector.Detect(nil))
	assert.Nil(t, detector.Detect([]models.TemperatureReading{}))
}

func TestDetectEndOfStreamClosesSession(t *testing.T) {
	// 数据在高温段截断，会话按最后一个读数收尾
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 20),
		saunaReading("2026-01-15 10:30", 50),
		saunaReading("2026-01-15 11:00", 70),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	require.Len(t, sessions, 1)
	assert.Equal(t, "11:00", sessions[0].EndTime.Format("15:04"))
	assert.Equal(t, 55, sessions[0].DurationMinutes)
}

func TestDetectDiscardsTooShortSession(t *testing.T) {
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 10:00", 10),
		saunaReading("2026-01-15 10:05", 30),
		saunaReading("2026-01-15 10:10", 70),
		saunaReading("2026-01-15 10:15", 55),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	assert.Empty(t, sessions)
}

func TestDetectGapResetAllowsLaterSession(t *testing.T) {
	// 没达峰的升温段在长间隔降温后复位，不影响后面真正的会话
	readings := []models.TemperatureReading{
		saunaReading("2026-01-15 08:00", 10),
		saunaReading("2026-01-15 08:10", 25),
		saunaReading("2026-01-15 08:30", 50),
		saunaReading("2026-01-15 11:30", 20),
		saunaReading("2026-01-15 14:00", 10),
		saunaReading("2026-01-15 14:05", 22),
		saunaReading("2026-01-15 14:30", 50),
		saunaReading("2026-01-15 15:00", 70),
		saunaReading("2026-01-15 15:20", 55),
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 10})
	sessions := detector.Detect(readings)

	require.Len(t, sessions, 1)
	assert.Equal(t, "14:05", sessions[0].StartTime.Format("15:04"))
	assert.Equal(t, "15:20", sessions[0].EndTime.Format("15:04"))
}

func TestDetectMixedTimezonesNormalized(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	readings := []models.TemperatureReading{
		saunaReading("2026-06-15 10:00", 15),
		saunaReading("2026-06-15 10:05", 25),
		saunaReading("2026-06-15 10:30", 50),
		{SensorID: "sauna", Timestamp: time.Date(2026, 6, 15, 11, 0, 0, 0, loc), TemperatureC: 72},
		{SensorID: "sauna", Timestamp: time.Date(2026, 6, 15, 11, 30, 0, 0, loc), TemperatureC: 55},
	}

	detector := NewDetector(DefaultDetectorConfig(), constantOutdoor{temp: 15})
	sessions := detector.Detect(readings)

	// 时区信息被剥离，按钟面时间比较
	require.Len(t, sessions, 1)
	assert.Equal(t, 85, sessions[0].DurationMinutes)
}

func TestHourlyOutdoorIndex(t *testing.T) {
	idx := NewHourlyOutdoorIndex([]models.TemperatureReading{
		outdoorAt("2026-01-15 10:00", 4.5),
		outdoorAt("2026-01-15 11:00", 6.0),
	})

	temp, ok := idx.TemperatureNear(mustParse(t, "2026-01-15 10:42"))
	require.True(t, ok)
	assert.Equal(t, 4.5, temp)

	_, ok = idx.TemperatureNear(mustParse(t, "2026-01-15 12:05"))
	assert.False(t, ok)
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", s)
	require.NoError(t, err)
	return ts
}

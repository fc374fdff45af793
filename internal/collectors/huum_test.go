package collectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHuumTable(t *testing.T) {
	export := `┌─────────────────────┬──────────────────┐
│ Time                │      Temperature │
├─────────────────────┼──────────────────┤
│ 2026-01-15 05:32:15 │              0°C │
│ 2026-01-15 05:37:15 │             12°C │
│ 2026-01-15 05:42:15 │             -2°C │
└─────────────────────┴──────────────────┘
`
	readings, err := ParseHuumTable(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, SaunaSensorID, readings[0].SensorID)
	assert.Equal(t, "2026-01-15 05:32:15", readings[0].Timestamp.Format("2006-01-02 15:04:05"))
	assert.Equal(t, 0.0, readings[0].TemperatureC)
	assert.Equal(t, 12.0, readings[1].TemperatureC)
	assert.Equal(t, -2.0, readings[2].TemperatureC)
}

func TestParseHuumTableSkipsNoise(t *testing.T) {
	export := `Fetching temperature data...
│ garbage row without temperature │
│ 2026-01-15 06:00:00 │             45°C │
Done.
`
	readings, err := ParseHuumTable(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 45.0, readings[0].TemperatureC)
}

func TestParseHuumTableEmpty(t *testing.T) {
	readings, err := ParseHuumTable(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, readings)
}

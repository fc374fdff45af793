package collectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEonCSV(t *testing.T) {
	csv := `interval_start,interval_end,consumption_kwh
2026-01-15T00:00:00,2026-01-15T00:30:00,0.35
2026-01-15T00:30:00,2026-01-15T01:00:00,4.21
`
	readings, err := ParseEonCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, EonSource, readings[0].Source)
	assert.Equal(t, "2026-01-15 00:00", readings[0].IntervalStart.Format("2006-01-02 15:04"))
	assert.Equal(t, "2026-01-15 00:30", readings[0].IntervalEnd.Format("2006-01-02 15:04"))
	assert.Equal(t, 0.35, readings[0].ConsumptionKwh)
	assert.Equal(t, 4.21, readings[1].ConsumptionKwh)
}

func TestParseEonCSVColumnOrderIndependent(t *testing.T) {
	csv := `consumption_kwh,interval_end,interval_start,meter_serial
1.5,2026-01-15T00:30:00,2026-01-15T00:00:00,ABC123
`
	readings, err := ParseEonCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 1.5, readings[0].ConsumptionKwh)
}

func TestParseEonCSVMissingColumn(t *testing.T) {
	csv := `interval_start,consumption_kwh
2026-01-15T00:00:00,0.35
`
	_, err := ParseEonCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval_end")
}

func TestParseEonCSVBadTimestamp(t *testing.T) {
	csv := `interval_start,interval_end,consumption_kwh
yesterday,2026-01-15T00:30:00,0.35
`
	_, err := ParseEonCSV(strings.NewReader(csv))
	assert.Error(t, err)
}

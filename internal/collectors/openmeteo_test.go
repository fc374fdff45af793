package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-01-14", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2026-01-15", r.URL.Query().Get("end_date"))
		assert.Equal(t, "temperature_2m", r.URL.Query().Get("hourly"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hourly": {
				"time": ["2026-01-14T00:00", "2026-01-14T01:00", "2026-01-14T02:00"],
				"temperature_2m": [3.2, null, 2.8]
			}
		}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(51.989, -1.497, "Europe/London")
	client.baseURL = server.URL

	readings, err := client.FetchRange(context.Background(),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// 空值小时被跳过
	require.Len(t, readings, 2)
	assert.Equal(t, OutdoorSensorID, readings[0].SensorID)
	assert.Equal(t, 3.2, readings[0].TemperatureC)
	assert.Equal(t, "2026-01-14 02:00", readings[1].Timestamp.Format("2006-01-02 15:04"))
	assert.Equal(t, 2.8, readings[1].TemperatureC)
}

func TestFetchRangeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenMeteoClient(51.989, -1.497, "Europe/London")
	client.baseURL = server.URL

	_, err := client.FetchRange(context.Background(),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// OutdoorSensorID 室外温度传感器标识
const OutdoorSensorID = "outside_temperature"

// Open-Meteo Archive API 默认地址
const openMeteoBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// OpenMeteoClient Open-Meteo 历史天气客户端
type OpenMeteoClient struct {
	baseURL    string
	latitude   float64
	longitude  float64
	timezone   string
	httpClient *http.Client
}

// NewOpenMeteoClient 创建客户端
func NewOpenMeteoClient(latitude, longitude float64, timezone string) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL:   openMeteoBaseURL,
		latitude:  latitude,
		longitude: longitude,
		timezone:  timezone,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// openMeteoResponse Archive API 响应
type openMeteoResponse struct {
	Hourly struct {
		Time          []string   `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
	} `json:"hourly"`
}

// FetchHourlyTemperatures 拉取指定天数的逐小时室外温度
// Archive API 有 5-7 天延迟，结束日期默认取昨天
func (c *OpenMeteoClient) FetchHourlyTemperatures(ctx context.Context, days int) ([]models.TemperatureReading, error) {
	today := time.Now().Truncate(24 * time.Hour)
	endDate := today.AddDate(0, 0, -1)
	startDate := today.AddDate(0, 0, -days)
	return c.FetchRange(ctx, startDate, endDate)
}

// FetchRange 拉取指定日期区间的逐小时室外温度
func (c *OpenMeteoClient) FetchRange(ctx context.Context, startDate, endDate time.Time) ([]models.TemperatureReading, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", c.latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", c.longitude))
	params.Set("start_date", startDate.Format("2006-01-02"))
	params.Set("end_date", endDate.Format("2006-01-02"))
	params.Set("hourly", "temperature_2m")
	params.Set("timezone", c.timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api status: %d", resp.StatusCode)
	}

	var data openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	var readings []models.TemperatureReading
	for i, timeStr := range data.Hourly.Time {
		if i >= len(data.Hourly.Temperature2m) {
			break
		}
		temp := data.Hourly.Temperature2m[i]
		if temp == nil {
			// 跳过缺失值
			continue
		}

		ts, err := time.Parse("2006-01-02T15:04", timeStr)
		if err != nil {
			continue
		}

		readings = append(readings, models.TemperatureReading{
			SensorID:     OutdoorSensorID,
			Timestamp:    ts,
			TemperatureC: *temp,
		})
	}

	return readings, nil
}

package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SubMeterSource 子回路分表数据来源标识
const SubMeterSource = "shelly_studio_phase"

// ShellyDeviceInfo 设备信息
type ShellyDeviceInfo struct {
	Generation string `json:"generation"`
	Model      string `json:"model"`
	MAC        string `json:"mac"`
	FwVersion  string `json:"fw_version"`
}

// ShellyStatus 当前功率与累计电量
type ShellyStatus struct {
	PowerW    float64   `json:"power"` // 当前功率 (W)
	TotalWh   float64   `json:"total"` // 累计电量 (Wh)
	Timestamp time.Time `json:"timestamp"`
}

// ShellyClient 本地 Shelly 设备客户端（Gen1/Gen2 局域网 HTTP API）
type ShellyClient struct {
	baseURL    string
	channel    int
	httpClient *http.Client
}

// NewShellyClient 创建客户端
func NewShellyClient(ip string, channel int) *ShellyClient {
	return &ShellyClient{
		baseURL: "http://" + ip,
		channel: channel,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// gen2DeviceInfo /rpc/Shelly.GetDeviceInfo 响应
type gen2DeviceInfo struct {
	Model string `json:"model"`
	MAC   string `json:"mac"`
	FwID  string `json:"fw_id"`
}

// gen1DeviceInfo /shelly 响应
type gen1DeviceInfo struct {
	Type string `json:"type"`
	MAC  string `json:"mac"`
	Fw   string `json:"fw"`
}

// DetectGeneration 探测设备代际：Gen2 走 rpc 接口，Gen1 走 /status
func (c *ShellyClient) DetectGeneration(ctx context.Context) (string, error) {
	if _, err := c.getJSON(ctx, "/rpc/Shelly.GetDeviceInfo"); err == nil {
		return "gen2", nil
	}

	data, err := c.getJSON(ctx, "/status")
	if err == nil {
		if _, ok := data["emeters"]; ok {
			return "gen1", nil
		}
	}

	return "", fmt.Errorf("could not detect shelly generation at %s", c.baseURL)
}

// DeviceInfo 获取设备信息
func (c *ShellyClient) DeviceInfo(ctx context.Context) (*ShellyDeviceInfo, error) {
	generation, err := c.DetectGeneration(ctx)
	if err != nil {
		return nil, err
	}

	if generation == "gen2" {
		var info gen2DeviceInfo
		if err := c.getInto(ctx, "/rpc/Shelly.GetDeviceInfo", &info); err != nil {
			return nil, err
		}
		return &ShellyDeviceInfo{
			Generation: "gen2",
			Model:      info.Model,
			MAC:        info.MAC,
			FwVersion:  info.FwID,
		}, nil
	}

	var info gen1DeviceInfo
	if err := c.getInto(ctx, "/shelly", &info); err != nil {
		return nil, err
	}
	return &ShellyDeviceInfo{
		Generation: "gen1",
		Model:      info.Type,
		MAC:        info.MAC,
		FwVersion:  info.Fw,
	}, nil
}

// CurrentStatus 读取当前功率与累计电量
// Gen2 3EM：功率在 em1:{channel}，累计电量在 em1data:{channel}
func (c *ShellyClient) CurrentStatus(ctx context.Context) (*ShellyStatus, error) {
	generation, err := c.DetectGeneration(ctx)
	if err != nil {
		return nil, err
	}

	if generation == "gen2" {
		data, err := c.getJSON(ctx, "/rpc/Shelly.GetStatus")
		if err != nil {
			return nil, err
		}

		powerKey := fmt.Sprintf("em1:%d", c.channel)
		dataKey := fmt.Sprintf("em1data:%d", c.channel)
		emPower, okPower := data[powerKey].(map[string]interface{})
		emData, okData := data[dataKey].(map[string]interface{})
		if !okPower || !okData {
			return nil, fmt.Errorf("could not read power data from channel %d", c.channel)
		}

		return &ShellyStatus{
			PowerW:    numberField(emPower, "act_power"),
			TotalWh:   numberField(emData, "total_act_energy"),
			Timestamp: time.Now(),
		}, nil
	}

	data, err := c.getJSON(ctx, "/status")
	if err != nil {
		return nil, err
	}
	emeters, ok := data["emeters"].([]interface{})
	if !ok || len(emeters) <= c.channel {
		return nil, fmt.Errorf("could not read power data from channel %d", c.channel)
	}
	em, ok := emeters[c.channel].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("could not read power data from channel %d", c.channel)
	}

	return &ShellyStatus{
		PowerW:    numberField(em, "power"),
		TotalWh:   numberField(em, "total"),
		Timestamp: time.Now(),
	}, nil
}

func (c *ShellyClient) getJSON(ctx context.Context, path string) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := c.getInto(ctx, path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *ShellyClient) getInto(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shelly request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shelly status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode shelly response: %w", err)
	}
	return nil
}

func numberField(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

// AlignIntervalEnd 把时间对齐到所属 30 分钟槽的边界
func AlignIntervalEnd(ts time.Time) time.Time {
	aligned := ts.Truncate(time.Minute)
	if aligned.Minute() >= 30 {
		return time.Date(aligned.Year(), aligned.Month(), aligned.Day(), aligned.Hour(), 30, 0, 0, aligned.Location())
	}
	return time.Date(aligned.Year(), aligned.Month(), aligned.Day(), aligned.Hour(), 0, 0, 0, aligned.Location())
}

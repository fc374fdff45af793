package tariff

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/langchou/homenergy/internal/models"
)

// yaml 配置结构
type configFile struct {
	Tariffs []tariffEntry `yaml:"tariffs"`
}

type tariffEntry struct {
	Name      string      `yaml:"name"`
	ValidFrom string      `yaml:"valid_from"`
	ValidTo   string      `yaml:"valid_to"`
	Rates     []rateEntry `yaml:"rates"`
}

type rateEntry struct {
	Start string  `yaml:"start"`
	End   string  `yaml:"end"`
	Rate  float64 `yaml:"rate"`
	Days  string  `yaml:"days"`
}

// LoadFromYAML 从 YAML 配置文件加载电价计划
func LoadFromYAML(path string) ([]models.Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tariff config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 电价配置
func Parse(data []byte) ([]models.Tariff, error) {
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tariff config: %w", err)
	}

	tariffs := make([]models.Tariff, 0, len(cfg.Tariffs))
	for _, entry := range cfg.Tariffs {
		validFrom, err := parseTimestamp(entry.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("tariff %q valid_from: %w", entry.Name, err)
		}

		t := models.Tariff{
			Name:      entry.Name,
			ValidFrom: validFrom,
		}
		if entry.ValidTo != "" {
			validTo, err := parseTimestamp(entry.ValidTo)
			if err != nil {
				return nil, fmt.Errorf("tariff %q valid_to: %w", entry.Name, err)
			}
			t.ValidTo = &validTo
		}

		for _, r := range entry.Rates {
			days := r.Days
			if days == "" {
				days = "*"
			}
			t.Rates = append(t.Rates, models.TariffRate{
				StartTime:       r.Start,
				EndTime:         r.End,
				RatePencePerKwh: r.Rate,
				Days:            days,
			})
		}

		tariffs = append(tariffs, t)
	}

	return tariffs, nil
}

// parseTimestamp 兼容日期和日期时间两种写法
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

package collectors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// EonSource 电网智能电表数据来源标识
const EonSource = "eon"

// eonapi 导出 CSV 的列名
const (
	eonColIntervalStart = "interval_start"
	eonColIntervalEnd   = "interval_end"
	eonColConsumption   = "consumption_kwh"
)

// ParseEonCSV 解析 eonapi 导出的半小时电量 CSV
func ParseEonCSV(r io.Reader) ([]models.ElectricityReading, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{eonColIntervalStart, eonColIntervalEnd, eonColConsumption} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv missing column %q", name)
		}
	}

	var readings []models.ElectricityReading
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		start, err := parseTimestamp(record[col[eonColIntervalStart]])
		if err != nil {
			return nil, fmt.Errorf("parse interval_start: %w", err)
		}
		end, err := parseTimestamp(record[col[eonColIntervalEnd]])
		if err != nil {
			return nil, fmt.Errorf("parse interval_end: %w", err)
		}
		kwh, err := strconv.ParseFloat(record[col[eonColConsumption]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse consumption_kwh: %w", err)
		}

		readings = append(readings, models.ElectricityReading{
			Source:         EonSource,
			IntervalStart:  start,
			IntervalEnd:    end,
			ConsumptionKwh: kwh,
		})
	}

	return readings, nil
}

// ParseEonCSVFile 从文件解析 eonapi CSV
func ParseEonCSVFile(path string) ([]models.ElectricityReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseEonCSV(f)
}

// parseTimestamp 兼容 ISO 日期时间的几种写法
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

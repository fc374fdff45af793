package collectors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// SaunaSensorID 桑拿温度传感器标识
const SaunaSensorID = "sauna"

// huum-cli 表格行格式：│ 2026-01-01 05:32:15 │              0°C │
var huumRowPattern = regexp.MustCompile(`│\s*(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s*│\s*(-?\d+)°C\s*│`)

// ParseHuumTable 解析 huum-cli 导出的表格文本
// 无法匹配的行直接跳过（表头、分隔线等）
func ParseHuumTable(r io.Reader) ([]models.TemperatureReading, error) {
	var readings []models.TemperatureReading

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		match := huumRowPattern.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		ts, err := time.Parse("2006-01-02 15:04:05", match[1])
		if err != nil {
			continue
		}
		temp, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			continue
		}

		readings = append(readings, models.TemperatureReading{
			SensorID:     SaunaSensorID,
			Timestamp:    ts,
			TemperatureC: temp,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan huum export: %w", err)
	}

	return readings, nil
}

// ParseHuumTableFile 从文件解析 huum-cli 导出
func ParseHuumTableFile(path string) ([]models.TemperatureReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open huum export: %w", err)
	}
	defer f.Close()
	return ParseHuumTable(f)
}

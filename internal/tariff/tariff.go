package tariff

import (
	"errors"
	"fmt"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// 费率解析错误
var (
	ErrNoActiveTariff = errors.New("no active tariff for timestamp")
	ErrNoMatchingRate = errors.New("no matching rate for timestamp")
)

// ActiveTariff 选择指定时间点生效的电价计划
// 规则：valid_from <= t 且 valid_to 为空或 > t，取 valid_from 最晚的一个
func ActiveTariff(tariffs []models.Tariff, ts time.Time) (*models.Tariff, error) {
	var active *models.Tariff
	for i := range tariffs {
		t := &tariffs[i]
		if t.ValidFrom.After(ts) {
			continue
		}
		if t.ValidTo != nil && !t.ValidTo.After(ts) {
			continue
		}
		if active == nil || t.ValidFrom.After(active.ValidFrom) {
			active = t
		}
	}
	if active == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveTariff, ts.Format(time.RFC3339))
	}
	return active, nil
}

// RateFor 返回指定时间点的电价（便士/kWh）
func RateFor(tariffs []models.Tariff, ts time.Time) (float64, error) {
	active, err := ActiveTariff(tariffs, ts)
	if err != nil {
		return 0, err
	}
	return RateForTariff(active, ts)
}

// RateForTariff 在给定电价计划内匹配费率时段，首个匹配生效
// 时段按 [start, end) 匹配并支持跨午夜；start == end（如 00:00-00:00）覆盖全天
func RateForTariff(t *models.Tariff, ts time.Time) (float64, error) {
	clock := clockMinutes(ts)
	weekend := isWeekend(ts)

	for _, rate := range t.Rates {
		// 先检查星期限制
		if rate.Days == "weekdays" && weekend {
			continue
		}
		if rate.Days == "weekends" && !weekend {
			continue
		}

		start, err := parseClock(rate.StartTime)
		if err != nil {
			return 0, fmt.Errorf("parse rate start %q: %w", rate.StartTime, err)
		}
		end, err := parseClock(rate.EndTime)
		if err != nil {
			return 0, fmt.Errorf("parse rate end %q: %w", rate.EndTime, err)
		}

		if clockInRange(clock, start, end) {
			return rate.RatePencePerKwh, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrNoMatchingRate, ts.Format(time.RFC3339))
}

// parseClock 解析 HH:MM 为当日分钟数
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock out of range: %s", s)
	}
	return h*60 + m, nil
}

// clockInRange 判断时刻是否落在 [start, end) 内，支持跨午夜区间
// start == end 视为全天费率
func clockInRange(clock, start, end int) bool {
	if start == end {
		return true
	}
	if start < end {
		return clock >= start && clock < end
	}
	// 跨午夜（如 23:00 - 07:00）
	return clock >= start || clock < end
}

func clockMinutes(ts time.Time) int {
	return ts.Hour()*60 + ts.Minute()
}

func isWeekend(ts time.Time) bool {
	wd := ts.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

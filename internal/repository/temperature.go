package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// TemperatureRepository 温度读数仓库
type TemperatureRepository struct {
	db *DB
}

// NewTemperatureRepository 创建温度仓库
func NewTemperatureRepository(db *DB) *TemperatureRepository {
	return &TemperatureRepository{db: db}
}

// SaveBatch 批量保存读数，重复 (sensor_id, timestamp) 计入 skipped
// 整批在一个事务内执行
func (r *TemperatureRepository) SaveBatch(ctx context.Context, readings []models.TemperatureReading) (*models.ImportResult, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &models.ImportResult{}
	for _, reading := range readings {
		tag, err := tx.Exec(ctx,
			`INSERT INTO temperature_readings (sensor_id, timestamp, temperature_c)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (sensor_id, timestamp) DO NOTHING`,
			reading.SensorID,
			reading.Timestamp,
			reading.TemperatureC,
		)
		if err != nil {
			return nil, fmt.Errorf("insert temperature reading: %w", err)
		}
		if tag.RowsAffected() > 0 {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// ListBySensor 按传感器查询读数，按时间升序
func (r *TemperatureRepository) ListBySensor(ctx context.Context, sensorID string, start, end *time.Time) ([]models.TemperatureReading, error) {
	query := `
		SELECT id, sensor_id, timestamp, temperature_c
		FROM temperature_readings WHERE sensor_id = $1
	`
	args := []interface{}{sensorID}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}
	query += " ORDER BY timestamp"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list temperature readings: %w", err)
	}
	defer rows.Close()

	var readings []models.TemperatureReading
	for rows.Next() {
		var reading models.TemperatureReading
		if err := rows.Scan(&reading.ID, &reading.SensorID, &reading.Timestamp, &reading.TemperatureC); err != nil {
			return nil, fmt.Errorf("scan temperature reading: %w", err)
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

// LatestTimestamp 传感器最新一条读数的时间，没有数据时返回 nil
func (r *TemperatureRepository) LatestTimestamp(ctx context.Context, sensorID string) (*time.Time, error) {
	var latest *time.Time
	err := r.db.Pool.QueryRow(ctx,
		`SELECT MAX(timestamp) FROM temperature_readings WHERE sensor_id = $1`,
		sensorID,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("latest temperature timestamp: %w", err)
	}
	return latest, nil
}

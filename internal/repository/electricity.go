package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// ElectricityRepository 电量读数仓库
type ElectricityRepository struct {
	db *DB
}

// NewElectricityRepository 创建电量仓库
func NewElectricityRepository(db *DB) *ElectricityRepository {
	return &ElectricityRepository{db: db}
}

// SaveBatch 批量保存读数，重复 (source, interval_start) 计入 skipped
// 整批在一个事务内执行
func (r *ElectricityRepository) SaveBatch(ctx context.Context, readings []models.ElectricityReading) (*models.ImportResult, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &models.ImportResult{}
	for _, reading := range readings {
		tag, err := tx.Exec(ctx,
			`INSERT INTO electricity_readings (source, interval_start, interval_end, consumption_kwh, cost_pence)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (source, interval_start) DO NOTHING`,
			reading.Source,
			reading.IntervalStart,
			reading.IntervalEnd,
			reading.ConsumptionKwh,
			reading.CostPence,
		)
		if err != nil {
			return nil, fmt.Errorf("insert electricity reading: %w", err)
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

// ListBySource 按来源查询读数，按 interval_start 升序
func (r *ElectricityRepository) ListBySource(ctx context.Context, source string, start, end *time.Time) ([]models.ElectricityReading, error) {
	query := `
		SELECT id, source, interval_start, interval_end, consumption_kwh, cost_pence
		FROM electricity_readings WHERE source = $1
	`
	args := []interface{}{source}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND interval_start >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND interval_start < $%d", len(args))
	}
	query += " ORDER BY interval_start"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list electricity readings: %w", err)
	}
	defer rows.Close()

	var readings []models.ElectricityReading
	for rows.Next() {
		var reading models.ElectricityReading
		err := rows.Scan(
			&reading.ID,
			&reading.Source,
			&reading.IntervalStart,
			&reading.IntervalEnd,
			&reading.ConsumptionKwh,
			&reading.CostPence,
		)
		if err != nil {
			return nil, fmt.Errorf("scan electricity reading: %w", err)
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

// ListMissingCost 查询尚未计算费用的读数
func (r *ElectricityRepository) ListMissingCost(ctx context.Context) ([]models.ElectricityReading, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source, interval_start, interval_end, consumption_kwh, cost_pence
		FROM electricity_readings WHERE cost_pence IS NULL
		ORDER BY interval_start
	`)
	if err != nil {
		return nil, fmt.Errorf("list readings missing cost: %w", err)
	}
	defer rows.Close()

	var readings []models.ElectricityReading
	for rows.Next() {
		var reading models.ElectricityReading
		err := rows.Scan(
			&reading.ID,
			&reading.Source,
			&reading.IntervalStart,
			&reading.IntervalEnd,
			&reading.ConsumptionKwh,
			&reading.CostPence,
		)
		if err != nil {
			return nil, fmt.Errorf("scan electricity reading: %w", err)
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

// UpdateCost 更新单条读数的费用
func (r *ElectricityRepository) UpdateCost(ctx context.Context, id int64, costPence float64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE electricity_readings SET cost_pence = $1 WHERE id = $2`,
		costPence, id,
	)
	if err != nil {
		return fmt.Errorf("update reading cost: %w", err)
	}
	return nil
}

// LatestIntervalStart 来源最新一条读数的起始时间，没有数据时返回 nil
func (r *ElectricityRepository) LatestIntervalStart(ctx context.Context, source string) (*time.Time, error) {
	var latest *time.Time
	err := r.db.Pool.QueryRow(ctx,
		`SELECT MAX(interval_start) FROM electricity_readings WHERE source = $1`,
		source,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("latest interval start: %w", err)
	}
	return latest, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/langchou/homenergy/internal/models"
)

// TariffRepository 电价计划仓库
type TariffRepository struct {
	db *DB
}

// NewTariffRepository 创建电价仓库
func NewTariffRepository(db *DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// Replace 按名称插入或替换电价计划，费率整体重建
func (r *TariffRepository) Replace(ctx context.Context, tariffs []models.Tariff) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	count := 0
	for _, t := range tariffs {
		var tariffID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO tariffs (name, valid_from, valid_to)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET valid_from = EXCLUDED.valid_from, valid_to = EXCLUDED.valid_to
			 RETURNING id`,
			t.Name,
			t.ValidFrom,
			t.ValidTo,
		).Scan(&tariffID)
		if err != nil {
			return 0, fmt.Errorf("upsert tariff: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tariff_rates WHERE tariff_id = $1`, tariffID); err != nil {
			return 0, fmt.Errorf("clear tariff rates: %w", err)
		}

		for _, rate := range t.Rates {
			_, err := tx.Exec(ctx,
				`INSERT INTO tariff_rates (tariff_id, start_time, end_time, rate_pence_per_kwh, days)
				 VALUES ($1, $2, $3, $4, $5)`,
				tariffID,
				rate.StartTime,
				rate.EndTime,
				rate.RatePencePerKwh,
				rate.Days,
			)
			if err != nil {
				return 0, fmt.Errorf("insert tariff rate: %w", err)
			}
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return count, nil
}

// ListAll 查询所有电价计划（含费率，保持插入顺序）
func (r *TariffRepository) ListAll(ctx context.Context) ([]models.Tariff, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, valid_from, valid_to FROM tariffs ORDER BY valid_from`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	var tariffs []models.Tariff
	for rows.Next() {
		var t models.Tariff
		if err := rows.Scan(&t.ID, &t.Name, &t.ValidFrom, &t.ValidTo); err != nil {
			return nil, fmt.Errorf("scan tariff: %w", err)
		}
		tariffs = append(tariffs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tariff rows: %w", err)
	}

	for i := range tariffs {
		rateRows, err := r.db.Pool.Query(ctx,
			`SELECT id, tariff_id, start_time, end_time, rate_pence_per_kwh, days
			 FROM tariff_rates WHERE tariff_id = $1 ORDER BY id`,
			tariffs[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("list tariff rates: %w", err)
		}
		for rateRows.Next() {
			var rate models.TariffRate
			err := rateRows.Scan(&rate.ID, &rate.TariffID, &rate.StartTime, &rate.EndTime, &rate.RatePencePerKwh, &rate.Days)
			if err != nil {
				rateRows.Close()
				return nil, fmt.Errorf("scan tariff rate: %w", err)
			}
			tariffs[i].Rates = append(tariffs[i].Rates, rate)
		}
		if err := rateRows.Err(); err != nil {
			rateRows.Close()
			return nil, fmt.Errorf("tariff rate rows: %w", err)
		}
		rateRows.Close()
	}

	return tariffs, nil
}

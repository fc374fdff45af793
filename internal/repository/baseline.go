package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/langchou/homenergy/internal/models"
)

// BaselineRepository 采集器基线仓库
type BaselineRepository struct {
	db *DB
}

// NewBaselineRepository 创建基线仓库
func NewBaselineRepository(db *DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// Get 查询来源的基线，没有记录时返回 nil
func (r *BaselineRepository) Get(ctx context.Context, source string) (*models.CollectorBaseline, error) {
	b := &models.CollectorBaseline{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT source, last_total_wh, last_timestamp FROM collector_baseline WHERE source = $1`,
		source,
	).Scan(&b.Source, &b.LastTotalWh, &b.LastTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get baseline: %w", err)
	}
	return b, nil
}

// Upsert 写入或更新基线
func (r *BaselineRepository) Upsert(ctx context.Context, b *models.CollectorBaseline) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO collector_baseline (source, last_total_wh, last_timestamp)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (source) DO UPDATE SET last_total_wh = EXCLUDED.last_total_wh, last_timestamp = EXCLUDED.last_timestamp`,
		b.Source,
		b.LastTotalWh,
		b.LastTime,
	)
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}

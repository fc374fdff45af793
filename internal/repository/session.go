package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/homenergy/internal/models"
)

// SessionRepository 桑拿会话仓库
type SessionRepository struct {
	db *DB
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save 幂等保存会话，start_time 已存在的计入 skipped 而不覆盖
// 整批在一个事务内执行
func (r *SessionRepository) Save(ctx context.Context, sessions []models.SaunaSession) (*models.ImportResult, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &models.ImportResult{}
	for _, s := range sessions {
		tag, err := tx.Exec(ctx,
			`INSERT INTO sauna_sessions (start_time, end_time, duration_minutes, peak_temperature_c, estimated_kwh)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (start_time) DO NOTHING`,
			s.StartTime,
			s.EndTime,
			s.DurationMinutes,
			s.PeakTemperatureC,
			s.EstimatedKwh,
		)
		if err != nil {
			return nil, fmt.Errorf("insert session: %w", err)
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

// UpdateElectricity 回填会话的电量关联字段，session_id 为空的计入 skipped
func (r *SessionRepository) UpdateElectricity(ctx context.Context, analyses []models.HeatingAnalysis) (updated, skipped int, err error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range analyses {
		if a.SessionID == nil {
			skipped++
			continue
		}
		_, err := tx.Exec(ctx,
			`UPDATE sauna_sessions SET
				estimated_kwh = $1,
				cheap_kwh = $2,
				peak_kwh = $3,
				heating_minutes = $4,
				cost_pence = $5
			 WHERE id = $6`,
			a.TotalKwh,
			a.CheapKwh,
			a.PeakKwh,
			a.HeatingMinutes,
			a.CostPence,
			*a.SessionID,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("update session electricity: %w", err)
		}
		updated++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit tx: %w", err)
	}
	return updated, skipped, nil
}

// List 查询时间区间内的会话，按开始时间升序
func (r *SessionRepository) List(ctx context.Context, start, end *time.Time) ([]models.SaunaSession, error) {
	query := `
		SELECT id, start_time, end_time, duration_minutes, peak_temperature_c,
			estimated_kwh, cheap_kwh, peak_kwh, heating_minutes, cost_pence
		FROM sauna_sessions WHERE 1=1
	`
	var args []interface{}
	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND start_time <= $%d", len(args))
	}
	query += " ORDER BY start_time"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SaunaSession
	for rows.Next() {
		var s models.SaunaSession
		err := rows.Scan(
			&s.ID,
			&s.StartTime,
			&s.EndTime,
			&s.DurationMinutes,
			&s.PeakTemperatureC,
			&s.EstimatedKwh,
			&s.CheapKwh,
			&s.PeakKwh,
			&s.HeatingMinutes,
			&s.CostPence,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetByID 获取会话详情
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.SaunaSession, error) {
	s := &models.SaunaSession{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, start_time, end_time, duration_minutes, peak_temperature_c,
			estimated_kwh, cheap_kwh, peak_kwh, heating_minutes, cost_pence
		FROM sauna_sessions WHERE id = $1
	`, id).Scan(
		&s.ID,
		&s.StartTime,
		&s.EndTime,
		&s.DurationMinutes,
		&s.PeakTemperatureC,
		&s.EstimatedKwh,
		&s.CheapKwh,
		&s.PeakKwh,
		&s.HeatingMinutes,
		&s.CostPence,
	)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// DeleteAll 清空所有会话（全量重建前调用）
func (r *SessionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM sauna_sessions`); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

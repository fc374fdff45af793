package service

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/homenergy/internal/analysis"
	"github.com/langchou/homenergy/internal/models"
)

// DailySummary 汇总某一天的用电与桑拿会话
func (s *EnergyService) DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	readings, err := s.elecRepo.ListBySource(ctx, s.cfg.TotalSource, &dayStart, &dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load readings: %w", err)
	}
	sessions, err := s.sessionRepo.List(ctx, &dayStart, &dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	summary := analysis.BuildDailySummary(dayStart, readings, sessions, s.cfg.CheapHourEnd)
	return &summary, nil
}

// PeriodSummary 汇总时间区间的用电、子回路占比与桑拿会话
func (s *EnergyService) PeriodSummary(ctx context.Context, start, end time.Time) (*models.PeriodSummary, error) {
	total, err := s.elecRepo.ListBySource(ctx, s.cfg.TotalSource, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("load total readings: %w", err)
	}
	sub, err := s.elecRepo.ListBySource(ctx, s.cfg.SubMeterSource, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("load sub-meter readings: %w", err)
	}
	sessions, err := s.sessionRepo.List(ctx, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	summary := analysis.BuildPeriodSummary(start, end, total, sub, sessions)
	return &summary, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"formscan/internal/domain"
	"formscan/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const assessmentStatsQuery = `SELECT
	COUNT(*) AS total_assessments,
	COUNT(CASE WHEN validation_status = 'pending' THEN 1 END) AS validation_pending,
	COUNT(CASE WHEN validation_status = 'valid' THEN 1 END) AS validation_valid,
	COUNT(CASE WHEN validation_status = 'warning' THEN 1 END) AS validation_warning,
	COUNT(CASE WHEN validation_status = 'invalid' THEN 1 END) AS validation_invalid
FROM assessments`

const formTypeCountsQuery = `SELECT form_type, COUNT(*) AS count
FROM assessments
GROUP BY form_type
ORDER BY form_type`

func (r *statsRepo) GetStats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, assessmentStatsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats totals: %w", err)
	}

	var rows []domain.FormTypeCount
	if err := r.db.SelectContext(ctx, &rows, formTypeCountsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats form types: %w", err)
	}
	stats.ByFormType = make(map[string]int, len(rows))
	for _, row := range rows {
		stats.ByFormType[row.FormType] = row.Count
	}
	return &stats, nil
}

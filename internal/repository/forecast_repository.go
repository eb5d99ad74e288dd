package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuewise/queue-intel/internal/domain"
)

// ForecastRepository persists computed forecast cells and the per-date
// computation marker that distinguishes "zero demand" from "never
// computed".
type ForecastRepository interface {
	CellsForDate(ctx context.Context, branchID string, date time.Time) ([]domain.ForecastCell, error)
	UpsertCells(ctx context.Context, cells []domain.ForecastCell) error
	IsComputed(ctx context.Context, branchID string, date time.Time) (bool, error)
	MarkComputed(ctx context.Context, branchID string, date time.Time) error
}

type forecastRepository struct {
	pool *pgxpool.Pool
}

// NewForecastRepository instantiates repository.
func NewForecastRepository(pool *pgxpool.Pool) ForecastRepository {
	return &forecastRepository{pool: pool}
}

func (r *forecastRepository) CellsForDate(ctx context.Context, branchID string, date time.Time) ([]domain.ForecastCell, error) {
	const query = `
        SELECT branch_id, forecast_date, hour, predicted, actual
        FROM hourly_forecasts
        WHERE branch_id=$1 AND forecast_date=$2
        ORDER BY hour`
	rows, err := r.pool.Query(ctx, query, branchID, domain.DateKey(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ForecastCell
	for rows.Next() {
		var cell domain.ForecastCell
		if err := rows.Scan(
			&cell.BranchID,
			&cell.Date,
			&cell.Hour,
			&cell.Predicted,
			&cell.Actual,
		); err != nil {
			return nil, err
		}
		result = append(result, cell)
	}
	return result, rows.Err()
}

func (r *forecastRepository) UpsertCells(ctx context.Context, cells []domain.ForecastCell) error {
	const query = `
        INSERT INTO hourly_forecasts (branch_id, forecast_date, hour, predicted, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (branch_id, forecast_date, hour)
        DO UPDATE SET predicted=EXCLUDED.predicted, updated_at=NOW()`
	for i := range cells {
		cell := &cells[i]
		if _, err := r.pool.Exec(ctx, query,
			cell.BranchID,
			domain.DateKey(cell.Date),
			cell.Hour,
			cell.Predicted,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *forecastRepository) IsComputed(ctx context.Context, branchID string, date time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM forecast_runs WHERE branch_id=$1 AND forecast_date=$2
        )`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, branchID, domain.DateKey(date)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *forecastRepository) MarkComputed(ctx context.Context, branchID string, date time.Time) error {
	const query = `
        INSERT INTO forecast_runs (branch_id, forecast_date, computed_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (branch_id, forecast_date)
        DO UPDATE SET computed_at=NOW()`
	_, err := r.pool.Exec(ctx, query, branchID, domain.DateKey(date))
	return err
}

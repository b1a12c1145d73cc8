package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neighborly/backend/internal/models"
)

type PlanRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

func (r *PlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var p models.Plan
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, commission_rate_percent, monthly_price_cents, created_at
		FROM plans WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.CommissionRatePercent, &p.MonthlyPriceCents, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlanRepo) List(ctx context.Context) ([]*models.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, commission_rate_percent, monthly_price_cents, created_at
		FROM plans ORDER BY monthly_price_cents ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.CommissionRatePercent, &p.MonthlyPriceCents, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neighborly/backend/internal/models"
)

type PayoutFailureRepo struct {
	pool *pgxpool.Pool
}

func NewPayoutFailureRepo(pool *pgxpool.Pool) *PayoutFailureRepo {
	return &PayoutFailureRepo{pool: pool}
}

func (r *PayoutFailureRepo) Create(ctx context.Context, f *models.PayoutFailure) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO payout_failures (id, task_id, helper_id, amount_cents, destination, reason, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING created_at
	`, f.ID, f.TaskID, f.HelperID, f.AmountCents, f.Destination, f.Reason).Scan(&f.CreatedAt)
}

func (r *PayoutFailureRepo) ListUnresolved(ctx context.Context) ([]*models.PayoutFailure, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_id, helper_id, amount_cents, destination, reason, resolved, created_at
		FROM payout_failures WHERE resolved = false ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PayoutFailure
	for rows.Next() {
		var f models.PayoutFailure
		if err := rows.Scan(&f.ID, &f.TaskID, &f.HelperID, &f.AmountCents, &f.Destination, &f.Reason, &f.Resolved, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

// MarkResolved flags a failure as handled after a manual retry.
func (r *PayoutFailureRepo) MarkResolved(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE payout_failures SET resolved = true WHERE id = $1`, id)
	return err
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neighborly/backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, customer_id, helper_id, title, description, status, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, t.ID, t.CustomerID, t.HelperID, t.Title, t.Description, t.Status, t.PriceCents).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, helper_id, title, description, status, price_cents, commission_cents, payout_cents, external_payment_ref, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.CustomerID, &t.HelperID, &t.Title, &t.Description, &t.Status, &t.PriceCents, &t.CommissionCents, &t.PayoutCents, &t.ExternalPaymentRef, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, helper_id, title, description, status, price_cents, commission_cents, payout_cents, external_payment_ref, created_at, updated_at
		FROM tasks WHERE customer_id = $1 ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.HelperID, &t.Title, &t.Description, &t.Status, &t.PriceCents, &t.CommissionCents, &t.PayoutCents, &t.ExternalPaymentRef, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Assign moves an open task to assigned with the given helper. Returns false
// when the task is not open (already assigned, paid, or closed).
func (r *TaskRepo) Assign(ctx context.Context, id, helperID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET helper_id = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, helperID, models.TaskStatusAssigned, models.TaskStatusOpen)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaid transitions a task to paid and sets commission, payout, and the
// provider payment reference in one conditional update. Returns false when
// the task was already paid, so concurrent redeliveries of the same payment
// event apply the transition at most once. Call within a transaction.
func (r *TaskRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, commissionCents, payoutCents int64, paymentRef string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks
		SET status = $2, commission_cents = $3, payout_cents = $4, external_payment_ref = $5, updated_at = now()
		WHERE id = $1 AND status <> $2
	`, id, models.TaskStatusPaid, commissionCents, payoutCents, paymentRef)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Close moves a paid task to closed. Returns false when the task is not paid.
func (r *TaskRepo) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, models.TaskStatusClosed, models.TaskStatusPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

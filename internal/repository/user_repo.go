package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neighborly/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, role, plan_id, external_payout_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Role, u.PlanID, u.ExternalPayoutAccountID).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, plan_id, external_payout_account_id, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, plan_id, external_payout_account_id, created_at, updated_at
		FROM users WHERE email = $1
	`, email))
}

// SetPayoutAccount records the helper's external payout destination.
func (r *UserRepo) SetPayoutAccount(ctx context.Context, id uuid.UUID, accountID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET external_payout_account_id = $2, updated_at = now() WHERE id = $1
	`, id, accountID)
	return err
}

// SetPlan assigns a subscription plan to the user. A nil planID clears it,
// dropping the user back to the default commission rate.
func (r *UserRepo) SetPlan(ctx context.Context, id uuid.UUID, planID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET plan_id = $2, updated_at = now() WHERE id = $1
	`, id, planID)
	return err
}

func (r *UserRepo) scanOne(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Role, &u.PlanID, &u.ExternalPayoutAccountID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

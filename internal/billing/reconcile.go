package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v82"

	"github.com/neighborly/backend/internal/models"
	"github.com/neighborly/backend/internal/notify"
	"github.com/neighborly/backend/internal/repository"
)

// MetadataTaskIDKey is the checkout-session metadata key carrying the task id.
const MetadataTaskIDKey = "task_id"

// TaskLedger is the task persistence surface the reconciler needs.
type TaskLedger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, commissionCents, payoutCents int64, paymentRef string) (bool, error)
}

// UserLookup resolves the helper on a task.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PlanLookup resolves a helper's subscription plan.
type PlanLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

// PayoutFailureRecorder persists failed transfers for manual reconciliation.
type PayoutFailureRecorder interface {
	Create(ctx context.Context, f *models.PayoutFailure) error
}

// NoticeQueue enqueues payment notices, transactionally or standalone.
// In production both methods are closures over the River client.
type NoticeQueue interface {
	InsertTx(ctx context.Context, tx pgx.Tx, args notify.PaymentNoticeArgs) error
	Insert(ctx context.Context, args notify.PaymentNoticeArgs) error
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Reconciler applies the checkout-completed state transition: verify-once
// semantics are the caller's job (Verifier); this type owns idempotency,
// commission computation, the atomic paid transition, and best-effort payout.
type Reconciler struct {
	pool           TxBeginner
	tasks          TaskLedger
	users          UserLookup
	plans          PlanLookup
	payout         PayoutClient
	payoutFailures PayoutFailureRecorder
	notices        NoticeQueue
	logger         *slog.Logger
}

func NewReconciler(pool TxBeginner, tasks TaskLedger, users UserLookup, plans PlanLookup, payout PayoutClient, payoutFailures PayoutFailureRecorder, notices NoticeQueue, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		pool:           pool,
		tasks:          tasks,
		users:          users,
		plans:          plans,
		payout:         payout,
		payoutFailures: payoutFailures,
		notices:        notices,
		logger:         logger,
	}
}

// HandleCheckoutCompleted moves the referenced task from assigned to paid.
// The transition is idempotent under at-least-once delivery: a redelivered
// event finds the task already paid and becomes a no-op that still succeeds.
// Events referencing unknown or malformed task ids are acknowledged without
// any write so the provider stops redelivering them.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, ev *stripe.Event) error {
	taskIDRaw, paymentRef := checkoutDetails(ev)
	if taskIDRaw == "" {
		r.logger.Warn("checkout event without task id metadata", "event_id", ev.ID)
		return nil
	}
	taskID, err := uuid.Parse(taskIDRaw)
	if err != nil {
		r.logger.Warn("checkout event with malformed task id", "event_id", ev.ID, "task_id", taskIDRaw)
		return nil
	}

	task, err := r.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		r.logger.Warn("checkout event for unknown task", "event_id", ev.ID, "task_id", taskID)
		return nil
	}
	if err != nil {
		return err
	}
	if task.Status == models.TaskStatusPaid {
		r.logger.Info("duplicate checkout event ignored", "task_id", taskID)
		return nil
	}

	rate, helper := r.commissionRate(ctx, task)
	commissionCents, payoutCents := SplitPrice(task.PriceCents, rate)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	applied, err := r.tasks.MarkPaid(ctx, tx, task.ID, commissionCents, payoutCents, paymentRef)
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent delivery won the race between the status read above
		// and this update. Nothing left to do.
		r.logger.Info("duplicate checkout event ignored", "task_id", taskID)
		return nil
	}

	if err := r.notices.InsertTx(ctx, tx, notify.PaymentNoticeArgs{
		TaskID:      task.ID,
		Notice:      notify.NoticePaymentReceived,
		AmountCents: task.PriceCents,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("task paid", "task_id", task.ID,
		"price_cents", task.PriceCents, "commission_cents", commissionCents, "payout_cents", payoutCents)

	r.initiatePayout(ctx, task, helper, payoutCents)
	return nil
}

// commissionRate resolves the helper's plan rate, falling back to the default
// when the task has no helper, the helper has no plan, or the plan row is
// gone. Lookup errors also fall back, logged; commission must still be booked.
func (r *Reconciler) commissionRate(ctx context.Context, task *models.Task) (int, *models.User) {
	if task.HelperID == nil {
		return DefaultCommissionRatePercent, nil
	}
	helper, err := r.users.GetByID(ctx, *task.HelperID)
	if err != nil {
		r.logger.Error("resolve helper for commission", "task_id", task.ID, "error", err)
		return DefaultCommissionRatePercent, nil
	}
	if helper.PlanID == nil {
		return DefaultCommissionRatePercent, helper
	}
	plan, err := r.plans.GetByID(ctx, *helper.PlanID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Error("resolve plan for commission", "task_id", task.ID, "plan_id", *helper.PlanID, "error", err)
		}
		return DefaultCommissionRatePercent, helper
	}
	return plan.CommissionRatePercent, helper
}

// initiatePayout attempts the transfer of the helper's share. Best effort:
// the paid status and the owed amount are already committed, so any failure
// here is recorded and alerted but never propagated.
func (r *Reconciler) initiatePayout(ctx context.Context, task *models.Task, helper *models.User, payoutCents int64) {
	if helper == nil || helper.ExternalPayoutAccountID == nil || *helper.ExternalPayoutAccountID == "" {
		r.logger.Info("payout skipped: helper has no payout account", "task_id", task.ID)
		return
	}
	if payoutCents <= 0 {
		return
	}
	destination := *helper.ExternalPayoutAccountID

	transferID, err := r.payout.Transfer(ctx, payoutCents, destination, task.ID.String())
	if err == nil {
		r.logger.Info("payout initiated", "task_id", task.ID, "transfer_id", transferID, "amount_cents", payoutCents)
		return
	}

	r.logger.Error("payout transfer failed", "task_id", task.ID, "amount_cents", payoutCents, "error", err)
	failure := &models.PayoutFailure{
		ID:          uuid.New(),
		TaskID:      task.ID,
		HelperID:    helper.ID,
		AmountCents: payoutCents,
		Destination: destination,
		Reason:      err.Error(),
	}
	if recErr := r.payoutFailures.Create(ctx, failure); recErr != nil {
		r.logger.Error("record payout failure", "task_id", task.ID, "error", recErr)
	}
	if insErr := r.notices.Insert(ctx, notify.PaymentNoticeArgs{
		TaskID:      task.ID,
		Notice:      notify.NoticePayoutFailed,
		AmountCents: payoutCents,
		Detail:      err.Error(),
	}); insErr != nil {
		r.logger.Error("enqueue payout failure notice", "task_id", task.ID, "error", insErr)
	}
}

// checkoutDetails pulls the task id metadata and the payment reference out of
// a checkout-completed event envelope.
func checkoutDetails(ev *stripe.Event) (taskID, paymentRef string) {
	if ev == nil || ev.Data == nil {
		return "", ""
	}
	obj := ev.Data.Object
	if meta, ok := obj["metadata"].(map[string]interface{}); ok {
		taskID, _ = meta[MetadataTaskIDKey].(string)
	}
	paymentRef, _ = obj["payment_intent"].(string)
	return taskID, paymentRef
}

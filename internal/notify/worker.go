package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Notice types.
const (
	NoticePaymentReceived = "payment_received"
	NoticePayoutFailed    = "payout_failed"
)

type PaymentNoticeArgs struct {
	TaskID      uuid.UUID `json:"task_id"`
	Notice      string    `json:"notice"`
	AmountCents int64     `json:"amount_cents"`
	Detail      string    `json:"detail,omitempty"`
}

func (PaymentNoticeArgs) Kind() string { return "payment_notice" }

// PaymentNoticeWorker delivers payment notices to the configured ops webhook.
// With no URL configured it only logs, which is enough for local development.
type PaymentNoticeWorker struct {
	river.WorkerDefaults[PaymentNoticeArgs]
	opsWebhookURL string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewPaymentNoticeWorker(opsWebhookURL string, logger *slog.Logger) *PaymentNoticeWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentNoticeWorker{
		opsWebhookURL: opsWebhookURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

func (w *PaymentNoticeWorker) Work(ctx context.Context, job *river.Job[PaymentNoticeArgs]) error {
	args := job.Args
	w.logger.Info("payment notice", "task_id", args.TaskID, "notice", args.Notice, "amount_cents", args.AmountCents)

	if w.opsWebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(args)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opsWebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error posting ops notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ops webhook returned status %d", resp.StatusCode)
	}
	return nil
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"billed/internal/amqp"
	"billed/internal/core"
	"billed/internal/sheets"
)

// ReviewStore is the slice of the SQLite repository the worker needs.
type ReviewStore interface {
	GetBill(ctx context.Context, id string) (core.Bill, error)
	IsReviewPending(ctx context.Context, id string) (bool, error)
	GetPendingReviewBills(ctx context.Context, limit int) ([]core.Bill, error)
	MarkReviewSynced(ctx context.Context, id string) error
	MarkReviewError(ctx context.Context, id string) error
}

// ReviewWorker exports submitted bills from SQLite to the review sheet.
type ReviewWorker struct {
	store     ReviewStore
	sheets    sheets.ReviewWriter
	batchSize int
}

func NewReviewWorker(store ReviewStore, sheets sheets.ReviewWriter, batchSize int) *ReviewWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &ReviewWorker{
		store:     store,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSubmittedMessage exports the bill named by an AMQP message. Bills
// already exported by the sweep are acknowledged without a second row. A
// failed export is left to the periodic sweep instead of requeueing.
func (w *ReviewWorker) HandleSubmittedMessage(ctx context.Context, msg *amqp.BillSubmittedMessage) error {
	slog.InfoContext(ctx, "Processing submitted bill", "id", msg.ID, "email", msg.Email)

	pending, err := w.store.IsReviewPending(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("check review status: %w", err)
	}
	if !pending {
		slog.InfoContext(ctx, "Bill already exported, skipping", "id", msg.ID)
		return nil
	}

	bill, err := w.store.GetBill(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get bill from storage: %w", err)
	}

	if err := w.export(ctx, bill); err != nil {
		slog.WarnContext(ctx, "Export failed, leaving bill to the sweep", "id", msg.ID, "error", err)
	}
	return nil
}

// ProcessPending exports bills whose message was lost.
func (w *ReviewWorker) ProcessPending(ctx context.Context) error {
	_, _, err := w.processBatch(ctx, w.batchSize)
	return err
}

// StartupCheck runs a larger sweep when the worker starts.
func (w *ReviewWorker) StartupCheck(ctx context.Context) error {
	ok, failed, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup check: %w", err)
	}
	slog.InfoContext(ctx, "Startup review check completed", "exported", ok, "errors", failed)
	return nil
}

// Run sweeps every interval until ctx is done.
func (w *ReviewWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic review sweep failed", "error", err)
			}
		}
	}
}

func (w *ReviewWorker) processBatch(ctx context.Context, limit int) (exported, failed int, err error) {
	bills, err := w.store.GetPendingReviewBills(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending bills: %w", err)
	}
	if len(bills) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending bills", "count", len(bills))
	for _, b := range bills {
		if err := w.export(ctx, b); err != nil {
			if errors.Is(err, context.Canceled) {
				return exported, failed, err
			}
			slog.ErrorContext(ctx, "Failed to export bill", "id", b.ID, "error", err)
			failed++
			continue
		}
		exported++
	}
	return exported, failed, nil
}

func (w *ReviewWorker) export(ctx context.Context, b core.Bill) error {
	// A bill the sheet can never accept is parked; anything else stays
	// pending for the next sweep.
	if err := b.Validate(); err != nil {
		if markErr := w.store.MarkReviewError(ctx, b.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark review error", "id", b.ID, "error", markErr)
		}
		return fmt.Errorf("invalid bill: %w", err)
	}

	ref, err := w.sheets.AppendBill(ctx, b)
	if err != nil {
		return fmt.Errorf("append to review sheet: %w", err)
	}

	if err := w.store.MarkReviewSynced(ctx, b.ID); err != nil {
		// The row exists; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", b.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported bill to review sheet",
		"id", b.ID,
		"sheets_ref", ref,
		"amount_cents", b.Amount.Cents)
	return nil
}

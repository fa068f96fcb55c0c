package services

import (
	"context"
	"fmt"
	"log/slog"

	"billed/internal/core"
)

// BillRepository is the persistence side of the service.
type BillRepository interface {
	UpsertBill(ctx context.Context, b core.Bill) (core.Bill, error)
	Close() error
}

// SubmissionPublisher announces new pending bills to the review worker.
type SubmissionPublisher interface {
	PublishBillSubmitted(ctx context.Context, id, email string) error
	Close() error
}

// BillService orchestrates bill operations across SQLite and AMQP.
type BillService struct {
	repo      BillRepository
	publisher SubmissionPublisher
}

// NewBillService accepts a nil publisher; messages are then skipped and the
// worker's periodic sweep picks the bills up.
func NewBillService(repo BillRepository, publisher SubmissionPublisher) *BillService {
	return &BillService{repo: repo, publisher: publisher}
}

// UpdateBill saves the bill locally, then publishes a submission message for
// pending bills. A publish failure does not fail the save.
func (s *BillService) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	saved, err := s.repo.UpsertBill(ctx, b)
	if err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	if saved.Status != core.StatusPending {
		return saved, nil
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping submission message", "id", saved.ID)
		return saved, nil
	}

	if err := s.publisher.PublishBillSubmitted(ctx, saved.ID, saved.Email); err != nil {
		slog.ErrorContext(ctx, "Failed to publish submission message",
			"id", saved.ID, "error", err)
	}

	return saved, nil
}

// Close closes both storage and AMQP connections.
func (s *BillService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close bill service: %v", errs)
	}

	return nil
}

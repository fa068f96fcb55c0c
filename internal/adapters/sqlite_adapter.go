package adapters

import (
	"context"

	"billed/internal/core"
	"billed/internal/services"
	"billed/internal/storage"
	"billed/internal/store"
)

var (
	_ store.BillStore        = (*SQLiteAdapter)(nil)
	_ store.AttachmentReader = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter exposes SQLiteRepository and BillService through the store
// ports. Writes go through the service so submissions reach AMQP.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.BillService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.BillService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// ListBills implements store.BillLister
func (a *SQLiteAdapter) ListBills(ctx context.Context, email string) ([]core.Bill, error) {
	return a.storage.ListBills(ctx, email)
}

// CreateAttachment implements store.AttachmentCreator
func (a *SQLiteAdapter) CreateAttachment(ctx context.Context, att core.Attachment) (core.AttachmentRef, error) {
	return a.storage.CreateAttachment(ctx, att)
}

// UpdateBill implements store.BillUpdater
func (a *SQLiteAdapter) UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	return a.service.UpdateBill(ctx, b)
}

// ReadAttachment implements store.AttachmentReader
func (a *SQLiteAdapter) ReadAttachment(ctx context.Context, key string) (core.Attachment, error) {
	return a.storage.ReadAttachment(ctx, key)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

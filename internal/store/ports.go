package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"billed/internal/core"
)

// Ports for the bill store backends.
type (
	BillLister interface {
		// ListBills returns the bills owned by email, or every bill when email is empty.
		ListBills(ctx context.Context, email string) ([]core.Bill, error)
	}

	AttachmentCreator interface {
		// CreateAttachment stores a receipt and returns where it can be fetched.
		CreateAttachment(ctx context.Context, a core.Attachment) (core.AttachmentRef, error)
	}

	BillUpdater interface {
		// UpdateBill saves the bill under its ID and returns the stored record.
		UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	}

	// AttachmentReader serves receipts back to the browser.
	AttachmentReader interface {
		ReadAttachment(ctx context.Context, key string) (core.Attachment, error)
	}

	// BillStore is everything the employee pages need.
	BillStore interface {
		BillLister
		AttachmentCreator
		BillUpdater
	}
)

// AttachmentPath is the URL prefix under which stored receipts are served.
const AttachmentPath = "/attachments/"

// AttachmentURL is the browser path of a stored receipt.
func AttachmentURL(key string) string {
	return AttachmentPath + key
}

// ErrMissingID is returned when a bill is saved without an identifier.
var ErrMissingID = errors.New("bill id is required")

// StatusError reports a store failure with an HTTP-like status code. The
// code always appears in the message so pages can tell a 404 from a 500.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("Erreur %d", e.Code)
	}
	return fmt.Sprintf("Erreur %d: %s", e.Code, msg)
}

// NotFound builds a 404 StatusError.
func NotFound(format string, args ...any) error {
	return &StatusError{Code: 404, Message: fmt.Sprintf(format, args...)}
}

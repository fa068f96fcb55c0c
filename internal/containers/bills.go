// Package containers holds the page logic behind the employee screens. A
// container is built per request with the session it acts for.
package containers

import (
	"context"
	"fmt"
	"time"

	"billed/internal/core"
	applog "billed/internal/log"
	"billed/internal/store"
)

// storeTimeout bounds every call to the bill store.
const storeTimeout = 7 * time.Second

// BillRow is a bill ready for the list page.
type BillRow struct {
	Bill        core.Bill
	Date        string
	StatusLabel string
	Amount      string
}

// Modal describes the receipt preview.
type Modal struct {
	Open     bool
	Title    string
	ImageURL string
	FileName string
	BillID   string
}

type Bills struct {
	session core.Session
	store   store.BillLister
	nav     Navigator
}

func NewBills(session core.Session, st store.BillLister, nav Navigator) *Bills {
	return &Bills{session: session, store: st, nav: nav}
}

// List fetches the session's bills newest-first. Sorting happens on the raw
// ISO dates, before they are formatted for display.
func (c *Bills) List(ctx context.Context) ([]BillRow, error) {
	if c.store == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	bills, err := c.store.ListBills(ctx, c.session.Email)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentBills).ErrorContext(ctx, "Failed to list bills",
			applog.FieldEmail, c.session.Email,
			applog.FieldError, err)
		return nil, fmt.Errorf("list bills: %w", err)
	}

	core.SortBillsNewestFirst(bills)

	rows := make([]BillRow, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, BillRow{
			Bill:        b,
			Date:        core.FormatDate(b.Date),
			StatusLabel: core.FormatStatus(b.Status),
			Amount:      b.Amount.String(),
		})
	}
	return rows, nil
}

func (c *Bills) HandleClickNewBill() {
	if c.nav != nil {
		c.nav.Navigate(RouteNewBill)
	}
}

// HandleClickIconEye opens the preview for b. A bill without a receipt
// still opens the modal, with no image.
func (c *Bills) HandleClickIconEye(b core.Bill) Modal {
	return Modal{
		Open:     true,
		Title:    "Justificatif",
		ImageURL: b.FileURL,
		FileName: b.FileName,
		BillID:   b.ID,
	}
}

package containers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"billed/internal/core"
	applog "billed/internal/log"
	"billed/internal/store"
)

// ErrSubmissionInFlight is returned when a submit arrives while another one
// from the same container is still running.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

type stagedFile struct {
	key         string
	upload      core.FileUpload
	contentType string
}

type NewBill struct {
	session core.Session
	store   store.BillStore
	nav     Navigator
	newKey  func() string

	mu       sync.Mutex
	staged   *stagedFile
	inFlight bool
}

func NewNewBill(session core.Session, st store.BillStore, nav Navigator) *NewBill {
	return &NewBill{
		session: session,
		store:   st,
		nav:     nav,
		newKey:  uuid.NewString,
	}
}

// HandleChangeFile stages f when its extension is allowed. A rejected file
// clears whatever was staged before. Nothing is sent to the store.
func (c *NewBill) HandleChangeFile(ctx context.Context, f core.FileUpload) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentNewBill)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := core.ValidateFileName(f.Name); err != nil {
		c.staged = nil
		logger.WarnContext(ctx, "Receipt rejected",
			applog.FieldFileName, f.Name,
			applog.FieldContentType, f.ContentType)
		return err
	}

	sniffed := core.SniffContentType(f)
	if f.ContentType != "" && f.ContentType != sniffed {
		logger.DebugContext(ctx, "Declared content type differs from content",
			applog.FieldFileName, f.Name,
			"declared", f.ContentType,
			applog.FieldContentType, sniffed)
	}

	c.staged = &stagedFile{key: c.newKey(), upload: f, contentType: sniffed}
	return nil
}

// StagedFileName returns the name of the staged receipt, if any.
func (c *NewBill) StagedFileName() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.staged == nil {
		return "", false
	}
	return c.staged.upload.Name, true
}

// HandleSubmit uploads the staged receipt, saves the bill built from form
// and navigates back to the list. Blank date, amount or pct fail before any
// store call. Store failures are logged and returned; no navigation happens.
func (c *NewBill) HandleSubmit(ctx context.Context, form core.BillForm) (core.Bill, error) {
	if err := form.Validate(); err != nil {
		return core.Bill{}, err
	}
	// Amount and pct formats are checked before anything is uploaded.
	if _, err := form.Bill(c.session.Email, core.AttachmentRef{}); err != nil {
		return core.Bill{}, err
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return core.Bill{}, ErrSubmissionInFlight
	}
	staged := c.staged
	if staged == nil {
		c.mu.Unlock()
		return core.Bill{}, core.ErrNoStagedFile
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	sl := applog.NewStructuredLogger(applog.FromContext(ctx))
	fields := applog.NewFields().WithFile(staged.upload.Name, staged.contentType)

	ref, err := c.createAttachment(ctx, staged)
	if err != nil {
		sl.LogError(ctx, "Receipt upload rejected", err, applog.ComponentNewBill, applog.OpUpload, fields)
		return core.Bill{}, fmt.Errorf("upload receipt: %w", err)
	}

	bill, err := form.Bill(c.session.Email, ref)
	if err != nil {
		return core.Bill{}, err
	}

	saved, err := c.updateBill(ctx, bill)
	if err != nil {
		fields = fields.WithBill(bill.ID, bill.Email, bill.Date, bill.Amount.Cents)
		sl.LogError(ctx, "Bill update rejected", err, applog.ComponentNewBill, applog.OpUpdate, fields)
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	if saved.ID == "" {
		saved = bill
	}

	c.mu.Lock()
	c.staged = nil
	c.mu.Unlock()

	sl.LogBillSubmitted(ctx, saved.ID, saved.Email, saved.Date, saved.Amount.Cents, saved.FileURL)
	if c.nav != nil {
		c.nav.Navigate(RouteBills)
	}
	return saved, nil
}

func (c *NewBill) createAttachment(ctx context.Context, s *stagedFile) (core.AttachmentRef, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	return c.store.CreateAttachment(ctx, core.Attachment{
		Key:         s.key,
		Email:       c.session.Email,
		FileName:    s.upload.Name,
		ContentType: s.contentType,
		Size:        int64(len(s.upload.Data)),
		Data:        s.upload.Data,
	})
}

func (c *NewBill) updateBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return c.store.UpdateBill(ctx, b)
}

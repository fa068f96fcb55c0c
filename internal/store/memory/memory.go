package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"billed/internal/core"
	"billed/internal/store"
)

var (
	_ store.BillStore        = (*Store)(nil)
	_ store.AttachmentReader = (*Store)(nil)
)

// Store is a deterministic in-memory bill store. Bills keep insertion order.
type Store struct {
	mu          sync.Mutex
	bills       []core.Bill
	attachments map[string]core.Attachment
}

func New(bills []core.Bill) *Store {
	s := &Store{attachments: make(map[string]core.Attachment)}
	s.bills = append(s.bills, bills...)
	return s
}

// NewFromFiles seeds the store from base/seed_bills.json, falling back to the
// built-in fixtures when the file is missing or unreadable.
func NewFromFiles(base string) *Store {
	bills, err := readSeed(filepath.Join(base, "seed_bills.json"))
	if err != nil || len(bills) == 0 {
		bills = Fixtures()
	}
	return New(bills)
}

// ListBills returns a copy of the bills owned by email (all when empty).
func (s *Store) ListBills(_ context.Context, email string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		if email != "" && !strings.EqualFold(b.Email, email) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// CreateAttachment keeps the receipt and returns a reference to it. A key is
// generated when the attachment does not carry one.
func (s *Store) CreateAttachment(_ context.Context, a core.Attachment) (core.AttachmentRef, error) {
	if err := core.ValidateFileName(a.FileName); err != nil {
		return core.AttachmentRef{}, err
	}
	if a.Key == "" {
		a.Key = uuid.NewString()
	}
	a.Size = int64(len(a.Data))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachments[a.Key] = a
	return core.AttachmentRef{Key: a.Key, FileURL: store.AttachmentURL(a.Key), FileName: a.FileName}, nil
}

// UpdateBill replaces the bill with the same ID, or appends it.
func (s *Store) UpdateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	if strings.TrimSpace(b.ID) == "" {
		return core.Bill{}, store.ErrMissingID
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == b.ID {
			s.bills[i] = b
			return b, nil
		}
	}
	s.bills = append(s.bills, b)
	return b, nil
}

// ReadAttachment returns a stored receipt.
func (s *Store) ReadAttachment(_ context.Context, key string) (core.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attachments[key]
	if !ok {
		return core.Attachment{}, store.NotFound("attachment %s", key)
	}
	return a, nil
}

func readSeed(path string) ([]core.Bill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bills []core.Bill
	if err := json.Unmarshal(data, &bills); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return bills, nil
}

package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"billed/internal/core"
	"billed/internal/store"
)

func TestFixturesListByEmail(t *testing.T) {
	s := New(Fixtures())
	bills, err := s.ListBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bills) != 4 {
		t.Fatalf("expected 4 bills, got %d", len(bills))
	}
	if bills[0].ID != "47qAXb6fIm2zOKkLzMro" || bills[0].Date != "2004-04-04" {
		t.Fatalf("unexpected first bill: %+v", bills[0])
	}

	other, _ := s.ListBills(context.Background(), "nobody@x")
	if len(other) != 0 {
		t.Fatalf("expected no bills for unknown user, got %d", len(other))
	}
}

func TestCreateAttachmentAndRead(t *testing.T) {
	s := New(nil)
	ref, err := s.CreateAttachment(context.Background(), core.Attachment{
		Email:    "a@a",
		FileName: "receipt.PNG",
		Data:     []byte("img"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ref.Key == "" || ref.FileURL != "/attachments/"+ref.Key || ref.FileName != "receipt.PNG" {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	a, err := s.ReadAttachment(context.Background(), ref.Key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(a.Data) != "img" || a.Size != 3 {
		t.Fatalf("unexpected attachment: %+v", a)
	}

	_, err = s.ReadAttachment(context.Background(), "missing")
	var se *store.StatusError
	if !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestCreateAttachmentRejectsExtension(t *testing.T) {
	s := New(nil)
	_, err := s.CreateAttachment(context.Background(), core.Attachment{FileName: "values.json"})
	if !errors.Is(err, core.ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestUpdateBillReplacesOrAppends(t *testing.T) {
	s := New(Fixtures())
	ctx := context.Background()

	b := Fixtures()[0]
	b.Name = "renamed"
	if _, err := s.UpdateBill(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	bills, _ := s.ListBills(ctx, "a@a")
	if len(bills) != 4 || bills[0].Name != "renamed" {
		t.Fatalf("expected in-place update, got %+v", bills[0])
	}

	nb := core.Bill{ID: "new", Email: "a@a", Date: "2023-12-22", Pct: 1, Status: core.StatusPending}
	if _, err := s.UpdateBill(ctx, nb); err != nil {
		t.Fatalf("append: %v", err)
	}
	bills, _ = s.ListBills(ctx, "a@a")
	if len(bills) != 5 || bills[4].ID != "new" {
		t.Fatalf("expected appended bill, got %d bills", len(bills))
	}

	if _, err := s.UpdateBill(ctx, core.Bill{Email: "a@a", Status: core.StatusPending}); !errors.Is(err, store.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if _, err := s.UpdateBill(ctx, core.Bill{ID: "x", Email: "a@a", Status: "lost"}); !errors.Is(err, core.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestNewFromFilesSeed(t *testing.T) {
	dir := t.TempDir()
	// No file -> fixtures
	s := NewFromFiles(dir)
	bills, _ := s.ListBills(context.Background(), "")
	if len(bills) != 4 {
		t.Fatalf("expected fixtures when seed missing, got %d", len(bills))
	}

	seed := `[{"id":"s1","email":"b@b","date":"2020-01-02","amount":12.5,"pct":20,"status":"accepted"}]`
	if err := os.WriteFile(filepath.Join(dir, "seed_bills.json"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	bills, _ = s.ListBills(context.Background(), "B@B")
	if len(bills) != 1 || bills[0].Amount.Cents != 1250 || !strings.EqualFold(bills[0].Email, "b@b") {
		t.Fatalf("unexpected seeded bills: %+v", bills)
	}
}

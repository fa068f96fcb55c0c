package memory

import (
	"context"
	"errors"
	"testing"

	"billed/internal/core"
)

func TestReviewLogAppend(t *testing.T) {
	l := NewReviewLog("")
	ref, err := l.AppendBill(context.Background(), core.Bill{
		ID:     "b1",
		Email:  "a@a",
		Date:   "2004-04-04",
		Amount: core.Money{Cents: 40000},
		Pct:    20,
		Status: core.StatusPending,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Review!A2:J2" {
		t.Fatalf("unexpected ref %q", ref)
	}

	rows := l.Rows()
	if len(rows) != 2 || rows[0][0] != "Date" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[1][4] != 400.0 || rows[1][9] != "b1" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}

func TestReviewLogRejectsInvalid(t *testing.T) {
	l := NewReviewLog("Review")
	_, err := l.AppendBill(context.Background(), core.Bill{ID: "b1", Status: core.StatusPending})
	if !errors.Is(err, core.ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if len(l.Rows()) != 1 {
		t.Fatal("invalid bill should not be recorded")
	}
}

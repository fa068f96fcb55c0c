package core

import (
	"errors"
	"testing"
)

func TestIsCalendarDate(t *testing.T) {
	cases := map[string]bool{
		"2004-04-04": true,
		"2023-12-22": true,
		"1999-01-31": true,
		"2023-13-01": false,
		"2023-1-1":   false,
		"2023/12/22": false,
		"2023.12.22": false,
		"2023 12 22": false,
		"4 Avr. 04":  false,
		"":           false,
	}
	for in, want := range cases {
		if got := IsCalendarDate(in); got != want {
			t.Fatalf("IsCalendarDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBillValidate(t *testing.T) {
	good := Bill{Email: "a@a", Date: "2004-04-04", Amount: Money{Cents: 40000}, Pct: 20, Status: StatusPending}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Bill{
		{Email: "a@a", Date: "04/04/2004", Status: StatusPending},
		{Email: "a@a", Amount: Money{Cents: -1}, Status: StatusPending},
		{Email: "a@a", Pct: 101, Status: StatusPending},
		{Email: "", Status: StatusPending},
		{Email: "a@a", Status: "archived"},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSessionValidate(t *testing.T) {
	if err := (Session{Type: UserEmployee, Email: "a@a"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Session{Type: UserEmployee}).Validate(); !errors.Is(err, ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if err := (Session{Type: "Guest", Email: "a@a"}).Validate(); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if (Session{Type: UserAdmin, Email: "a@a"}).IsEmployee() {
		t.Fatal("admin reported as employee")
	}
}

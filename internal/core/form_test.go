package core

import (
	"errors"
	"testing"
)

func TestBillFormValidateRequiredFields(t *testing.T) {
	full := BillForm{Type: "Transports", Name: "vol", Date: "2023-12-22", Amount: "1", Pct: "1"}
	if err := full.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		form BillForm
		want error
	}{
		{"missing date", BillForm{Amount: "1", Pct: "20"}, ErrMissingDate},
		{"missing amount", BillForm{Date: "2023-12-22", Pct: "20"}, ErrMissingAmount},
		{"missing pct", BillForm{Date: "2023-12-22", Amount: "1"}, ErrMissingPct},
		{"blank pct", BillForm{Date: "2023-12-22", Amount: "1", Pct: "   "}, ErrMissingPct},
		{"bad date", BillForm{Date: "22/12/2023", Amount: "1", Pct: "20"}, ErrInvalidDate},
		{"bad pct", BillForm{Date: "2023-12-22", Amount: "1", Pct: "abc"}, ErrInvalidPct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBillFormValidateReportsEveryMissingField(t *testing.T) {
	err := BillForm{}.Validate()
	for _, want := range []error{ErrMissingDate, ErrMissingAmount, ErrMissingPct} {
		if !errors.Is(err, want) {
			t.Fatalf("expected %v in %v", want, err)
		}
	}
}

func TestBillFormBill(t *testing.T) {
	ref := AttachmentRef{Key: "k1", FileURL: "/attachments/k1", FileName: "document.png"}
	form := BillForm{Type: "Hôtel et logement", Name: "encore", Date: "2004-04-04", Amount: "400", VAT: "80", Pct: "", Commentary: "séminaire billed"}

	b, err := form.Bill("a@a", ref)
	if err != nil {
		t.Fatalf("Bill() error = %v", err)
	}
	if b.ID != "k1" || b.FileURL != ref.FileURL || b.FileName != ref.FileName {
		t.Fatalf("upload result not merged: %+v", b)
	}
	if b.Status != StatusPending {
		t.Fatalf("status = %q, want pending", b.Status)
	}
	if b.Pct != DefaultPct {
		t.Fatalf("pct = %d, want default %d", b.Pct, DefaultPct)
	}
	if b.Amount.Cents != 40000 || b.Email != "a@a" {
		t.Fatalf("unexpected bill: %+v", b)
	}

	b, err = BillForm{Date: "2004-04-04", Pct: "10"}.Bill("a@a", ref)
	if err != nil || b.Amount.Cents != 0 || b.Pct != 10 {
		t.Fatalf("blank amount should default to 0: %+v, %v", b, err)
	}

	if _, err := (BillForm{Date: "2004-04-04", Amount: "x"}).Bill("a@a", ref); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

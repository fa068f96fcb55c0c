package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"billed/internal/core"
	"billed/internal/store"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "jwt-token", srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/bills", "", nil); err == nil {
		t.Fatal("expected error for relative URL")
	}
}

func TestListBillsFiltersByEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/bills" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		io.WriteString(w, `[
			{"id":"1","email":"a@a","date":"2004-04-04","amount":400,"pct":20,"status":"pending"},
			{"id":"2","email":"b@b","date":"2001-01-01","amount":100,"pct":20,"status":"refused"}
		]`)
	})

	bills, err := c.ListBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bills) != 1 || bills[0].ID != "1" || bills[0].Amount.Cents != 40000 {
		t.Fatalf("unexpected bills: %+v", bills)
	}
}

func TestListBillsStatusErrors(t *testing.T) {
	for _, code := range []int{404, 500} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			io.WriteString(w, `{"message":"boom"}`)
		})

		_, err := c.ListBills(context.Background(), "a@a")
		var se *store.StatusError
		if !errors.As(err, &se) || se.Code != code {
			t.Fatalf("expected StatusError %d, got %v", code, err)
		}
		if !strings.Contains(err.Error(), "Erreur") || !strings.Contains(err.Error(), "boom") {
			t.Fatalf("unexpected message: %v", err)
		}
	}
}

func TestCreateAttachmentMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bills" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("email") != "a@a" {
			t.Errorf("unexpected email %q", r.FormValue("email"))
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(f)
			if fh.Filename != "document.png" || string(data) != "png-bytes" {
				t.Errorf("unexpected file %s %q", fh.Filename, data)
			}
		}
		io.WriteString(w, `{"fileUrl":"https://localhost:3456/images/test.jpg","key":"1234"}`)
	})

	ref, err := c.CreateAttachment(context.Background(), core.Attachment{
		Email:    "a@a",
		FileName: "document.png",
		Data:     []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ref.Key != "1234" || ref.FileURL != "https://localhost:3456/images/test.jpg" || ref.FileName != "document.png" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestUpdateBillPatch(t *testing.T) {
	var got core.Bill
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/bills/1234" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(got)
	})

	b := core.Bill{ID: "1234", Email: "a@a", Date: "2023-12-22", Amount: core.Money{Cents: 100}, Pct: 1, Status: core.StatusPending}
	saved, err := c.UpdateBill(context.Background(), b)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != core.StatusPending || got.Amount.Cents != 100 || saved.ID != "1234" {
		t.Fatalf("unexpected payload %+v / saved %+v", got, saved)
	}

	if _, err := c.UpdateBill(context.Background(), core.Bill{}); !errors.Is(err, store.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestUpdateBillRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	_, err := c.UpdateBill(context.Background(), core.Bill{ID: "x", Email: "a@a", Status: core.StatusPending})
	var se *store.StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Fatalf("expected 500, got %v", err)
	}
}

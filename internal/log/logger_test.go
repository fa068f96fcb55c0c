package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: buf})
}

func TestLoggerComponentAppearsOnce(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).With(FieldRequestID, "req-1").WithComponent(ComponentNewBill)

	l.Info("hello")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=new_bill") {
		t.Fatalf("expected a single new_bill component, got %q", out)
	}
	if !strings.Contains(out, "request_id=req-1") {
		t.Fatalf("request id lost when switching component: %q", out)
	}
	if l.Component() != ComponentNewBill {
		t.Fatalf("Component() = %q", l.Component())
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	var got *Logger
	h := Middleware(base)(RequestIDMiddleware(func(r *http.Request) string { return "abc" })(
		ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		}))))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("unexpected logger %+v", got)
	}
	if !strings.Contains(buf.String(), "request_id=abc") || !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != ComponentApp {
		t.Fatalf("expected default app logger, got %+v", l)
	}
}

func TestStructuredLoggerSingleComponent(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf).WithComponent(ComponentHTTP))
	ctx := context.Background()

	sl.LogBillSubmitted(ctx, "b1", "a@a", "2004-04-04", 40000, "/attachments/b1")
	sl.LogError(ctx, "upload failed", errors.New("boom"), ComponentNewBill, OpUpload, NewFields().WithComponent(ComponentStorage))
	sl.LogHTTPEnd(ctx, httptest.NewRequest(http.MethodGet, "/", nil), 200, 1, "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	for i, want := range []string{"component=new_bill", "component=new_bill", "component=http"} {
		if strings.Count(lines[i], "component=") != 1 || !strings.Contains(lines[i], want) {
			t.Errorf("line %d: want a single %s, got %q", i, want, lines[i])
		}
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	ctx := context.Background()

	sl.LogBillSubmitted(ctx, "b1", "a@a", "2004-04-04", 40000, "/attachments/b1")
	sl.LogError(ctx, "submit failed", errors.New("Erreur 404"), ComponentNewBill, OpUpdate, nil)

	r := httptest.NewRequest(http.MethodPost, "/employee/bill/new", nil)
	sl.LogHTTPEnd(ctx, r, 502, 12, "1.2.3.4")

	out := buf.String()
	for _, want := range []string{
		"bill_id=b1",
		"amount_cents=40000",
		`error="Erreur 404"`,
		"level=ERROR",
		"status_code=502",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

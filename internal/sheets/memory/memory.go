package memory

import (
	"context"
	"log/slog"
	"sync"

	"billed/internal/core"
	"billed/internal/sheets"
)

var _ sheets.ReviewWriter = (*ReviewLog)(nil)

// ReviewLog keeps review rows in memory. The worker falls back to it when no
// spreadsheet is configured.
type ReviewLog struct {
	mu   sync.Mutex
	name string
	rows [][]any
}

func NewReviewLog(name string) *ReviewLog {
	if name == "" {
		name = "Review"
	}
	return &ReviewLog{name: name, rows: [][]any{sheets.ReviewHeader}}
}

// AppendBill stores the row and returns a synthetic row reference.
func (l *ReviewLog) AppendBill(ctx context.Context, b core.Bill) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	l.rows = append(l.rows, sheets.ReviewRow(b))
	ref := sheets.RowRef(l.name, len(l.rows))
	l.mu.Unlock()

	slog.InfoContext(ctx, "Review row recorded in memory", "id", b.ID, "ref", ref)
	return ref, nil
}

// Rows returns a copy of the log, header included.
func (l *ReviewLog) Rows() [][]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]any, len(l.rows))
	copy(out, l.rows)
	return out
}

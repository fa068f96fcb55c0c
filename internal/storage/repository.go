package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"billed/internal/core"
	"billed/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const billColumns = `id, email, type, name, amount_cents, date, vat, pct, commentary,
	file_url, file_name, status, comment_admin`

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(s scanner) (core.Bill, error) {
	var (
		b      core.Bill
		status string
	)
	err := s.Scan(&b.ID, &b.Email, &b.Type, &b.Name, &b.Amount.Cents, &b.Date, &b.VAT, &b.Pct,
		&b.Commentary, &b.FileURL, &b.FileName, &status, &b.CommentAdmin)
	b.Status = core.Status(status)
	return b, err
}

func (r *SQLiteRepository) queryBills(ctx context.Context, query string, args ...any) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// ListBills implements store.BillLister. Bills come back in insertion order.
func (r *SQLiteRepository) ListBills(ctx context.Context, email string) ([]core.Bill, error) {
	var (
		bills []core.Bill
		err   error
	)
	if email == "" {
		bills, err = r.queryBills(ctx, `SELECT `+billColumns+` FROM bills ORDER BY seq`)
	} else {
		bills, err = r.queryBills(ctx, `SELECT `+billColumns+` FROM bills WHERE email = ? COLLATE NOCASE ORDER BY seq`, email)
	}
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// GetBill retrieves a single bill by ID.
func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, store.NotFound("bill %s", id)
	}
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %s: %w", id, err)
	}
	return b, nil
}

// UpsertBill inserts the bill or replaces the stored one with the same ID.
// Every save queues the bill for the review export again.
func (r *SQLiteRepository) UpsertBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.ID == "" {
		return core.Bill{}, store.ErrMissingID
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("invalid bill: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (`+billColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM bills))
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			type = excluded.type,
			name = excluded.name,
			amount_cents = excluded.amount_cents,
			date = excluded.date,
			vat = excluded.vat,
			pct = excluded.pct,
			commentary = excluded.commentary,
			file_url = excluded.file_url,
			file_name = excluded.file_name,
			status = excluded.status,
			comment_admin = excluded.comment_admin,
			updated_at = CURRENT_TIMESTAMP,
			review_status = 'pending',
			review_synced_at = NULL`,
		b.ID, b.Email, b.Type, b.Name, b.Amount.Cents, b.Date, b.VAT, b.Pct, b.Commentary,
		b.FileURL, b.FileName, string(b.Status), b.CommentAdmin)
	if err != nil {
		return core.Bill{}, fmt.Errorf("upsert bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved to SQLite",
		"id", b.ID,
		"email", b.Email,
		"amount_cents", b.Amount.Cents,
		"date", b.Date,
		"status", b.Status)

	return b, nil
}

// CreateAttachment stores a receipt blob under a fresh key unless one is given.
func (r *SQLiteRepository) CreateAttachment(ctx context.Context, a core.Attachment) (core.AttachmentRef, error) {
	if err := core.ValidateFileName(a.FileName); err != nil {
		return core.AttachmentRef{}, err
	}
	if a.Key == "" {
		a.Key = uuid.NewString()
	}
	if a.ContentType == "" {
		a.ContentType = "application/octet-stream"
	}
	if a.Data == nil {
		a.Data = []byte{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attachments (key, email, file_name, content_type, size, data)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Key, a.Email, a.FileName, a.ContentType, len(a.Data), a.Data)
	if err != nil {
		return core.AttachmentRef{}, fmt.Errorf("create attachment: %w", err)
	}

	return core.AttachmentRef{Key: a.Key, FileURL: store.AttachmentURL(a.Key), FileName: a.FileName}, nil
}

// ReadAttachment implements store.AttachmentReader.
func (r *SQLiteRepository) ReadAttachment(ctx context.Context, key string) (core.Attachment, error) {
	var a core.Attachment
	err := r.db.QueryRowContext(ctx, `
		SELECT key, email, file_name, content_type, size, data FROM attachments WHERE key = ?`, key).
		Scan(&a.Key, &a.Email, &a.FileName, &a.ContentType, &a.Size, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Attachment{}, store.NotFound("attachment %s", key)
	}
	if err != nil {
		return core.Attachment{}, fmt.Errorf("read attachment %s: %w", key, err)
	}
	return a, nil
}

// GetPendingReviewBills returns up to limit bills not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingReviewBills(ctx context.Context, limit int) ([]core.Bill, error) {
	bills, err := r.queryBills(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE review_status = 'pending'
		ORDER BY created_at, seq
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending review bills: %w", err)
	}
	return bills, nil
}

// MarkReviewSynced records a successful export.
func (r *SQLiteRepository) MarkReviewSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE bills SET review_status = 'synced', review_synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}
	slog.InfoContext(ctx, "Bill marked as exported", "id", id)
	return nil
}

// MarkReviewError parks a bill whose export failed.
func (r *SQLiteRepository) MarkReviewError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE bills SET review_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill review error: %w", err)
	}
	slog.WarnContext(ctx, "Bill marked with export error", "id", id)
	return nil
}

// IsReviewPending reports whether the bill still waits for export.
func (r *SQLiteRepository) IsReviewPending(ctx context.Context, id string) (bool, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT review_status FROM bills WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, store.NotFound("bill %s", id)
	}
	if err != nil {
		return false, fmt.Errorf("get review status %s: %w", id, err)
	}
	return status == "pending", nil
}

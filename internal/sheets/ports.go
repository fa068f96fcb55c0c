package sheets

import (
	"context"
	"fmt"

	"billed/internal/core"
)

// ReviewWriter appends bills to the review log read by the accounting team.
type ReviewWriter interface {
	// AppendBill writes one row and returns a reference to it.
	AppendBill(ctx context.Context, b core.Bill) (rowRef string, err error)
}

// ReviewHeader names the review log columns.
var ReviewHeader = []any{"Date", "Email", "Type", "Nom", "Montant", "TVA", "%", "Statut", "Justificatif", "ID"}

// ReviewRow lays a bill out as a review log row.
func ReviewRow(b core.Bill) []any {
	return []any{
		b.Date,
		b.Email,
		b.Type,
		b.Name,
		b.Amount.Euros(),
		b.VAT,
		b.Pct,
		string(b.Status),
		b.FileURL,
		b.ID,
	}
}

// RowRef formats a sheet range reference for a single row.
func RowRef(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:J%d", sheet, row, row)
}

package analytics

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/tallyapp/tally/internal/model"
)

// GeneratePDF renders the user's transactions for the period as a PDF
// statement with period totals at the bottom.
func (r *Reporter) GeneratePDF(ctx context.Context, user *model.User, start, end time.Time) ([]byte, error) {
	rows, err := r.rows(ctx, user, start, end)
	if err != nil {
		return nil, err
	}
	summary, err := r.aggregator.Summarize(ctx, user, start, end)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("%s %s, %s to %s",
		user.FirstName, user.LastName,
		start.Format("2006-01-02"), end.Format("2006-01-02")))
	pdf.Ln(12)

	colWidths := []float64{24, 20, 24, 38, 38, 46}
	headers := []string{"Date", "Type", "Amount", "Category", "Account", "Description"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		cells := []string{
			row.txn.Date.Format("2006-01-02"),
			string(row.txn.Type),
			row.txn.Amount.String(),
			row.category,
			row.account,
			row.txn.Description,
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total Income: %s", summary.TotalIncome))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total Expense: %s", summary.TotalExpense))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Net: %s", summary.Balance))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

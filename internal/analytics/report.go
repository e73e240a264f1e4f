package analytics

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// Reporter renders period reports from the committed transaction set.
type Reporter struct {
	storage    service.Storage
	aggregator *Aggregator
}

// NewReporter creates a reporter backed by the given storage.
func NewReporter(storage service.Storage, aggregator *Aggregator) *Reporter {
	return &Reporter{storage: storage, aggregator: aggregator}
}

// reportRow resolves the display names a report needs for one transaction.
type reportRow struct {
	txn      model.Transaction
	category string
	account  string
}

func (r *Reporter) rows(ctx context.Context, user *model.User, start, end time.Time) ([]reportRow, error) {
	txns, err := r.storage.GetTransactionsByDateRange(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	// Resolve names once; reports for a period typically reuse a handful of
	// categories and accounts.
	categoryNames := make(map[string]string)
	accountNames := make(map[string]string)

	rows := make([]reportRow, 0, len(txns))
	for _, txn := range txns {
		catName, ok := categoryNames[txn.CategoryID]
		if !ok {
			category, err := r.storage.GetCategoryByID(ctx, txn.CategoryID)
			if err != nil {
				return nil, err
			}
			catName = category.Name
			categoryNames[txn.CategoryID] = catName
		}

		accName, ok := accountNames[txn.AccountID]
		if !ok {
			account, err := r.storage.GetAccountByID(ctx, txn.AccountID)
			if err != nil {
				return nil, err
			}
			accName = account.Name
			accountNames[txn.AccountID] = accName
		}

		rows = append(rows, reportRow{txn: txn, category: catName, account: accName})
	}
	return rows, nil
}

// GenerateCSV renders the user's transactions for the period as
// semicolon-separated CSV.
func (r *Reporter) GenerateCSV(ctx context.Context, user *model.User, start, end time.Time) (string, error) {
	rows, err := r.rows(ctx, user, start, end)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	records := [][]string{{"ID", "Date", "Type", "Amount", "Category", "Account", "Description"}}
	for _, row := range rows {
		records = append(records, []string{
			row.txn.ID,
			row.txn.Date.Format("2006-01-02 15:04:05"),
			string(row.txn.Type),
			row.txn.Amount.String(),
			row.category,
			row.account,
			row.txn.Description,
		})
	}

	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

// GenerateTextSummary renders the period analytics as a plain-text report.
func (r *Reporter) GenerateTextSummary(ctx context.Context, user *model.User, start, end time.Time) (string, error) {
	summary, err := r.aggregator.Summarize(ctx, user, start, end)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Financial Summary for the period %s to %s:\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Total Income: %s\n", summary.TotalIncome)
	fmt.Fprintf(&b, "Total Expense: %s\n", summary.TotalExpense)
	fmt.Fprintf(&b, "Net Balance for Period: %s\n", summary.Balance)
	fmt.Fprintf(&b, "Total Transactions: %d\n\n", summary.TransactionCount)

	if len(summary.ExpensesByCategory) > 0 {
		b.WriteString("Expenses Breakdown:\n")
		for _, item := range summary.ExpensesByCategory {
			fmt.Fprintf(&b, "  - %s: %s\n", item.CategoryName, item.Total)
		}
		b.WriteString("\n")
	}

	if len(summary.IncomeByCategory) > 0 {
		b.WriteString("Income Breakdown:\n")
		for _, item := range summary.IncomeByCategory {
			fmt.Fprintf(&b, "  - %s: %s\n", item.CategoryName, item.Total)
		}
	}

	return b.String(), nil
}

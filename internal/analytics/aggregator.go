// Package analytics derives period summaries and reports from the committed
// transaction set. Everything here is read-only and idempotent.
package analytics

import (
	"context"
	"time"

	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// Aggregator computes analytics by replaying committed transactions.
type Aggregator struct {
	storage service.Storage
}

// NewAggregator creates an aggregator backed by the given storage.
func NewAggregator(storage service.Storage) *Aggregator {
	return &Aggregator{storage: storage}
}

// DefaultPeriod returns the fallback analytics window: the 30 days ending now.
func DefaultPeriod(now time.Time) (start, end time.Time) {
	return now.AddDate(0, 0, -30), now
}

// Summarize computes totals, net balance, transaction count, and
// per-category breakdowns for the user's transactions with event dates in
// [start, end] inclusive. The net balance is derived (income minus expense)
// and independent of any stored account balance.
func (a *Aggregator) Summarize(ctx context.Context, user *model.User, start, end time.Time) (*service.AnalyticsSummary, error) {
	income, err := a.storage.SumByTypeAndPeriod(ctx, user.ID, model.TypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expense, err := a.storage.SumByTypeAndPeriod(ctx, user.ID, model.TypeExpense, start, end)
	if err != nil {
		return nil, err
	}
	count, err := a.storage.CountByPeriod(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}

	incomeByCategory, err := a.storage.SumByCategory(ctx, user.ID, model.TypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expensesByCategory, err := a.storage.SumByCategory(ctx, user.ID, model.TypeExpense, start, end)
	if err != nil {
		return nil, err
	}

	return &service.AnalyticsSummary{
		Period:             service.DateRange{Start: start, End: end},
		TotalIncome:        income,
		TotalExpense:       expense,
		Balance:            income - expense,
		TransactionCount:   count,
		IncomeByCategory:   incomeByCategory,
		ExpensesByCategory: expensesByCategory,
	}, nil
}

// CurrentBalance returns the user's all-time income minus expense across all
// accounts. It is a cross-account aggregate, useful as a consistency oracle
// against the sum of stored account balances.
func (a *Aggregator) CurrentBalance(ctx context.Context, user *model.User) (model.Money, error) {
	income, err := a.storage.SumByType(ctx, user.ID, model.TypeIncome)
	if err != nil {
		return 0, err
	}
	expense, err := a.storage.SumByType(ctx, user.ID, model.TypeExpense)
	if err != nil {
		return 0, err
	}
	return income - expense, nil
}

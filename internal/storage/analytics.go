package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// SumByType returns the all-time sum of the user's transactions of one type.
func (s *SQLiteStorage) SumByType(ctx context.Context, userID string, typ model.TransactionType) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumByType(ctx, s.db, userID, typ)
}

func (t *sqliteTx) SumByType(ctx context.Context, userID string, typ model.TransactionType) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumByType(ctx, t.tx, userID, typ)
}

func sumByType(ctx context.Context, q querier, userID string, typ model.TransactionType) (model.Money, error) {
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	var total int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = ?`, userID, string(typ)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return model.Money(total), nil
}

// SumByTypeAndPeriod returns the sum of the user's transactions of one type
// with event dates inside [start, end].
func (s *SQLiteStorage) SumByTypeAndPeriod(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumByTypeAndPeriod(ctx, s.db, userID, typ, start, end)
}

func (t *sqliteTx) SumByTypeAndPeriod(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) (model.Money, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumByTypeAndPeriod(ctx, t.tx, userID, typ, start, end)
}

func sumByTypeAndPeriod(ctx context.Context, q querier, userID string, typ model.TransactionType, start, end time.Time) (model.Money, error) {
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, end, start)
	}

	var total int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, string(typ), start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions for period: %w", err)
	}
	return model.Money(total), nil
}

// CountByPeriod returns the number of the user's transactions with event
// dates inside [start, end].
func (s *SQLiteStorage) CountByPeriod(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countByPeriod(ctx, s.db, userID, start, end)
}

func (t *sqliteTx) CountByPeriod(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countByPeriod(ctx, t.tx, userID, start, end)
}

func countByPeriod(ctx context.Context, q querier, userID string, start, end time.Time) (int, error) {
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, end, start)
	}

	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for period: %w", err)
	}
	return count, nil
}

// SumByCategory returns per-category totals of one transaction type inside
// [start, end]. Categories with no matching transactions are not included.
func (s *SQLiteStorage) SumByCategory(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return sumByCategory(ctx, s.db, userID, typ, start, end)
}

func (t *sqliteTx) SumByCategory(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return sumByCategory(ctx, t.tx, userID, typ, start, end)
}

func sumByCategory(ctx context.Context, q querier, userID string, typ model.TransactionType, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, end, start)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, SUM(t.amount_cents)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = ? AND t.date >= ? AND t.date <= ?
		GROUP BY c.id, c.name
		ORDER BY SUM(t.amount_cents) DESC`,
		userID, string(typ), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []service.CategoryTotal
	for rows.Next() {
		var ct service.CategoryTotal
		var cents int64
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		ct.Total = model.Money(cents)
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

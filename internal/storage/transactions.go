package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

const transactionColumns = `id, user_id, account_id, category_id, amount_cents, type, date, description, notes, created_at, updated_at`

// CreateTransaction inserts a new transaction row.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createTransaction(ctx, s.db, txn)
}

func (t *sqliteTx) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createTransaction(ctx, t.tx, txn)
}

func createTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount_cents, type, date, description, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.AccountID, txn.CategoryID, int64(txn.Amount),
		string(txn.Type), txn.Date, txn.Description, txn.Notes,
		txn.CreatedAt, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}

	slog.Debug("created transaction", "id", txn.ID, "amount_cents", int64(txn.Amount), "type", txn.Type)
	return nil
}

// GetTransactionByID returns the transaction with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, s.db, id)
}

func (t *sqliteTx) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, t.tx, id)
}

func getTransactionByID(ctx context.Context, q querier, id string) (*model.Transaction, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	var txn model.Transaction
	var amount int64
	var typ string
	var description, notes sql.NullString
	err := row.Scan(&txn.ID, &txn.UserID, &txn.AccountID, &txn.CategoryID,
		&amount, &typ, &txn.Date, &description, &notes, &txn.CreatedAt, &txn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transaction with ID %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	txn.Amount = model.Money(amount)
	txn.Type = model.TransactionType(typ)
	txn.Description = description.String
	txn.Notes = notes.String
	return &txn, nil
}

// GetTransactions returns a page of the user's transactions matching the
// filter, newest event first, along with the unpaginated total.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, userID string, filter service.TransactionFilter) (*service.Page, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactions(ctx, s.db, userID, filter)
}

func (t *sqliteTx) GetTransactions(ctx context.Context, userID string, filter service.TransactionFilter) (*service.Page, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactions(ctx, t.tx, userID, filter)
}

func getTransactions(ctx context.Context, q querier, userID string, filter service.TransactionFilter) (*service.Page, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, filter.EndDate, filter.StartDate)
	}

	conds := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Type != nil {
		conds = append(conds, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.AccountID != nil {
		conds = append(conds, "account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.StartDate != nil {
		conds = append(conds, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	where := strings.Join(conds, " AND ")

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + where +
		` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	items, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	return &service.Page{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GetTransactionsByDateRange returns the user's transactions with event
// dates inside [start, end], ordered by date.
func (s *SQLiteStorage) GetTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionsByDateRange(ctx, s.db, userID, start, end)
}

func (t *sqliteTx) GetTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionsByDateRange(ctx, t.tx, userID, start, end)
}

func getTransactionsByDateRange(ctx context.Context, q querier, userID string, start, end time.Time) ([]model.Transaction, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, end, start)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// UpdateTransaction persists all mutable transaction fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateTransaction(ctx, s.db, txn)
}

func (t *sqliteTx) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateTransaction(ctx, t.tx, txn)
}

func updateTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, amount_cents = ?, type = ?, date = ?,
			description = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		txn.AccountID, txn.CategoryID, int64(txn.Amount), string(txn.Type),
		txn.Date, txn.Description, txn.Notes, txn.UpdatedAt, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction with ID %s", txn.ID)
	}
	return nil
}

// DeleteTransaction removes a transaction row.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteTransaction(ctx, s.db, id)
}

func (t *sqliteTx) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteTransaction(ctx, t.tx, id)
}

func deleteTransaction(ctx context.Context, q querier, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transaction with ID %s", id)
	}

	slog.Debug("deleted transaction", "id", id)
	return nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var txns []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var amount int64
		var typ string
		var description, notes sql.NullString
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.AccountID, &txn.CategoryID,
			&amount, &typ, &txn.Date, &description, &notes,
			&txn.CreatedAt, &txn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Amount = model.Money(amount)
		txn.Type = model.TransactionType(typ)
		txn.Description = description.String
		txn.Notes = notes.String
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

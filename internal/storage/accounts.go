package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

const accountColumns = `id, user_id, name, type, currency, balance_cents, created_at, updated_at`

// CreateAccount inserts a new account. A duplicate name for the same owner
// surfaces as ErrConflict.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createAccount(ctx, s.db, account)
}

func (t *sqliteTx) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createAccount(ctx, t.tx, account)
}

func createAccount(ctx context.Context, q querier, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, currency, balance_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, string(account.Type),
		account.Currency, int64(account.Balance), account.CreatedAt, account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return common.Conflictf("an account named %q already exists", account.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	slog.Info("created account", "id", account.ID, "name", account.Name, "type", account.Type)
	return nil
}

// GetAccountByID returns the account with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountByID(ctx, s.db, id)
}

func (t *sqliteTx) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountByID(ctx, t.tx, id)
}

func getAccountByID(ctx context.Context, q querier, id string) (*model.Account, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account with ID %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccountByName returns the owner's account with the given name, or nil
// when no such account exists.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountByName(ctx, s.db, userID, name)
}

func (t *sqliteTx) GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountByName(ctx, t.tx, userID, name)
}

func getAccountByName(ctx context.Context, q querier, userID, name string) (*model.Account, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND name = ?`, userID, name)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccountsByUser returns all accounts owned by the user, ordered by name.
func (s *SQLiteStorage) GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountsByUser(ctx, s.db, userID)
}

func (t *sqliteTx) GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountsByUser(ctx, t.tx, userID)
}

func getAccountsByUser(ctx context.Context, q querier, userID string) ([]model.Account, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		var typ string
		var balance int64
		var currency sql.NullString
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Name, &typ, &currency,
			&balance, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acc.Type = model.AccountType(typ)
		acc.Balance = model.Money(balance)
		acc.Currency = currency.String
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "user_id", userID, "count", len(accounts))
	return accounts, nil
}

// UpdateAccount persists the account's mutable fields, including balance.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateAccount(ctx, s.db, account)
}

func (t *sqliteTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateAccount(ctx, t.tx, account)
}

func updateAccount(ctx context.Context, q querier, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, currency = ?, balance_cents = ?, updated_at = ?
		WHERE id = ?`,
		account.Name, string(account.Type), account.Currency,
		int64(account.Balance), account.UpdatedAt, account.ID,
	)
	if isUniqueViolation(err) {
		return common.Conflictf("an account named %q already exists", account.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("account with ID %s", account.ID)
	}
	return nil
}

// DeleteAccount removes an account row. Callers must have verified that no
// transactions reference it.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAccount(ctx, s.db, id)
}

func (t *sqliteTx) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAccount(ctx, t.tx, id)
}

func deleteAccount(ctx context.Context, q querier, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("account with ID %s", id)
	}

	slog.Info("deleted account", "id", id)
	return nil
}

// CountTransactionsByAccount returns the number of transactions referencing
// the account.
func (s *SQLiteStorage) CountTransactionsByAccount(ctx context.Context, accountID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByAccount(ctx, s.db, accountID)
}

func (t *sqliteTx) CountTransactionsByAccount(ctx context.Context, accountID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByAccount(ctx, t.tx, accountID)
}

func countTransactionsByAccount(ctx context.Context, q querier, accountID string) (int, error) {
	if err := validateString(accountID, "accountID"); err != nil {
		return 0, err
	}

	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var acc model.Account
	var typ string
	var balance int64
	var currency sql.NullString
	err := row.Scan(&acc.ID, &acc.UserID, &acc.Name, &typ, &currency,
		&balance, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	acc.Type = model.AccountType(typ)
	acc.Balance = model.Money(balance)
	acc.Currency = currency.String
	return &acc, nil
}

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// Coordinator orchestrates transaction writes: it validates ownership,
// resolves references, and applies the balance engine together with the
// ledger write inside a single storage transaction. Partial application
// (transaction saved, balance not updated, or vice versa) is never
// observable.
type Coordinator struct {
	storage service.Storage
}

// NewCoordinator creates a coordinator backed by the given storage.
func NewCoordinator(storage service.Storage) *Coordinator {
	return &Coordinator{storage: storage}
}

// TransactionRequest carries the client-supplied fields of a transaction
// create or update.
type TransactionRequest struct {
	Date        time.Time
	AccountID   string
	CategoryID  string
	Description string
	Notes       string
	Type        model.TransactionType
	Amount      model.Money
}

// validateRequest checks the client-controlled fields before any lookups.
func validateRequest(req *TransactionRequest) error {
	if req.Amount <= 0 {
		return common.InvalidArgumentf("amount must be positive")
	}
	if !model.ValidTransactionType(req.Type) {
		return common.InvalidArgumentf("transaction type must be INCOME or EXPENSE, got %q", req.Type)
	}
	if req.Date.IsZero() {
		return common.InvalidArgumentf("date is required")
	}
	if req.AccountID == "" {
		return common.InvalidArgumentf("account id is required")
	}
	if req.CategoryID == "" {
		return common.InvalidArgumentf("category id is required")
	}
	return nil
}

// resolveCategory loads the category and checks ownership and type
// consistency against the requested transaction type.
func resolveCategory(ctx context.Context, tx service.Tx, user *model.User, req *TransactionRequest) (*model.Category, error) {
	category, err := tx.GetCategoryByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != user.ID {
		return nil, common.Forbiddenf("category does not belong to the current user")
	}
	if category.Type != req.Type {
		return nil, common.InvalidArgumentf("category %q is a %s category, transaction is %s",
			category.Name, category.Type, req.Type)
	}
	return category, nil
}

// CreateTransaction validates the request, computes the new account balance,
// and persists the transaction plus the updated account atomically.
func (c *Coordinator) CreateTransaction(ctx context.Context, user *model.User, req TransactionRequest) (*model.Transaction, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin atomic unit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := resolveCategory(ctx, tx, user, &req); err != nil {
		return nil, err
	}

	account, err := tx.GetAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != user.ID {
		return nil, common.Forbiddenf("account does not belong to the current user")
	}

	now := time.Now().UTC()
	txn := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		AccountID:   account.ID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	account.Balance = applyCreate(account.Balance, req.Amount, req.Type)
	account.UpdatedAt = now

	if err := tx.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := tx.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit atomic unit: %w", err)
	}

	slog.Info("created transaction",
		"id", txn.ID,
		"account_id", account.ID,
		"type", txn.Type,
		"amount", txn.Amount.String(),
		"balance", account.Balance.String())
	return txn, nil
}

// UpdateTransaction rolls back the transaction's old balance effect and
// applies the new one. When the account reference changes, the rollback
// targets the old account and the apply targets the new one — a transfer —
// with both account updates committed in the same atomic unit.
func (c *Coordinator) UpdateTransaction(ctx context.Context, user *model.User, id string, req TransactionRequest) (*model.Transaction, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin atomic unit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != user.ID {
		return nil, common.Forbiddenf("transaction does not belong to the current user")
	}

	// Capture the persisted state before any mutation.
	oldAmount := txn.Amount
	oldType := txn.Type
	oldAccountID := txn.AccountID

	if _, err := resolveCategory(ctx, tx, user, &req); err != nil {
		return nil, err
	}

	newAccount, err := tx.GetAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if newAccount.UserID != txn.UserID {
		return nil, common.InvalidArgumentf("new account does not belong to the current user")
	}

	now := time.Now().UTC()

	if oldAccountID != newAccount.ID {
		// Transfer: rollback-only against the old account, apply-only
		// against the new one.
		oldAccount, err := tx.GetAccountByID(ctx, oldAccountID)
		if err != nil {
			return nil, err
		}

		oldAccount.Balance = applyRollback(oldAccount.Balance, oldAmount, oldType)
		oldAccount.UpdatedAt = now
		if err := tx.UpdateAccount(ctx, oldAccount); err != nil {
			return nil, err
		}

		newAccount.Balance = applyCreate(newAccount.Balance, req.Amount, req.Type)
	} else {
		// Same account: combined rollback + apply.
		newAccount.Balance = ApplyDelta(newAccount.Balance, req.Amount, req.Type, oldAmount, oldType)
	}
	newAccount.UpdatedAt = now

	txn.AccountID = newAccount.ID
	txn.CategoryID = req.CategoryID
	txn.Amount = req.Amount
	txn.Type = req.Type
	txn.Date = req.Date
	txn.Description = req.Description
	txn.Notes = req.Notes
	txn.UpdatedAt = now

	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := tx.UpdateAccount(ctx, newAccount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit atomic unit: %w", err)
	}

	slog.Info("updated transaction",
		"id", txn.ID,
		"account_id", newAccount.ID,
		"moved", oldAccountID != newAccount.ID,
		"amount", txn.Amount.String())
	return txn, nil
}

// DeleteTransaction rolls the transaction's effect out of its account
// balance and removes it, atomically.
func (c *Coordinator) DeleteTransaction(ctx context.Context, user *model.User, id string) error {
	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin atomic unit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if txn.UserID != user.ID {
		return common.Forbiddenf("transaction does not belong to the current user")
	}

	account, err := tx.GetAccountByID(ctx, txn.AccountID)
	if err != nil {
		return err
	}

	account.Balance = applyRollback(account.Balance, txn.Amount, txn.Type)
	account.UpdatedAt = time.Now().UTC()

	if err := tx.DeleteTransaction(ctx, txn.ID); err != nil {
		return err
	}
	if err := tx.UpdateAccount(ctx, account); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit atomic unit: %w", err)
	}

	slog.Info("deleted transaction",
		"id", txn.ID,
		"account_id", account.ID,
		"balance", account.Balance.String())
	return nil
}

// GetTransaction returns one of the user's transactions by id.
func (c *Coordinator) GetTransaction(ctx context.Context, user *model.User, id string) (*model.Transaction, error) {
	txn, err := c.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.UserID != user.ID {
		return nil, common.Forbiddenf("transaction does not belong to the current user")
	}
	return txn, nil
}

// ListTransactions returns a filtered, paginated page of the user's
// transactions.
func (c *Coordinator) ListTransactions(ctx context.Context, user *model.User, filter service.TransactionFilter) (*service.Page, error) {
	return c.storage.GetTransactions(ctx, user.ID, filter)
}

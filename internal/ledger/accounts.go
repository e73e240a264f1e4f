package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

// AccountRequest carries the client-supplied fields of an account create or
// update. InitialBalance is honored on create only; afterwards the balance
// is mutated exclusively by the balance engine.
type AccountRequest struct {
	Name           string
	Type           model.AccountType
	Currency       string
	InitialBalance model.Money
}

func validateAccountRequest(req *AccountRequest) error {
	if req.Name == "" {
		return common.InvalidArgumentf("account name is required")
	}
	if !model.ValidAccountType(req.Type) {
		return common.InvalidArgumentf("unknown account type %q", req.Type)
	}
	return nil
}

// CreateAccount creates a new account for the user. The name must be unique
// per owner; the currency falls back to the user's default, then to USD.
func (c *Coordinator) CreateAccount(ctx context.Context, user *model.User, req AccountRequest) (*model.Account, error) {
	if err := validateAccountRequest(&req); err != nil {
		return nil, err
	}

	existing, err := c.storage.GetAccountByName(ctx, user.ID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.Conflictf("an account named %q already exists", req.Name)
	}

	currency := req.Currency
	if currency == "" {
		currency = user.Settings.Currency
	}
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      req.Name,
		Type:      req.Type,
		Currency:  currency,
		Balance:   req.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns one of the user's accounts by id.
func (c *Coordinator) GetAccount(ctx context.Context, user *model.User, id string) (*model.Account, error) {
	account, err := c.storage.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.UserID != user.ID {
		return nil, common.Forbiddenf("account does not belong to the current user")
	}
	return account, nil
}

// ListAccounts returns all of the user's accounts.
func (c *Coordinator) ListAccounts(ctx context.Context, user *model.User) ([]model.Account, error) {
	return c.storage.GetAccountsByUser(ctx, user.ID)
}

// UpdateAccount changes an account's name, type, or currency. The balance is
// never touched here; it only moves through transaction writes.
func (c *Coordinator) UpdateAccount(ctx context.Context, user *model.User, id string, req AccountRequest) (*model.Account, error) {
	if err := validateAccountRequest(&req); err != nil {
		return nil, err
	}

	account, err := c.GetAccount(ctx, user, id)
	if err != nil {
		return nil, err
	}

	account.Name = req.Name
	account.Type = req.Type
	if req.Currency != "" {
		account.Currency = req.Currency
	}
	account.UpdatedAt = time.Now().UTC()

	if err := c.storage.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account that owns no transactions. Accounts with
// associated transactions cannot be deleted.
func (c *Coordinator) DeleteAccount(ctx context.Context, user *model.User, id string) error {
	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	account, err := tx.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if account.UserID != user.ID {
		return common.Forbiddenf("account does not belong to the current user")
	}

	count, err := tx.CountTransactionsByAccount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflictf("account cannot be deleted because it has %d associated transactions", count)
	}

	if err := tx.DeleteAccount(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("deleted account", "id", id, "name", account.Name)
	return nil
}

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account, err := f.coordinator.CreateAccount(ctx, f.user, AccountRequest{
		Name:           "Vacation Fund",
		Type:           model.AccountTypeSavings,
		InitialBalance: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", account.Currency)
	assert.Equal(t, model.Money(25000), account.Balance)

	// Same name for the same user conflicts.
	_, err = f.coordinator.CreateAccount(ctx, f.user, AccountRequest{
		Name: "Vacation Fund",
		Type: model.AccountTypeSavings,
	})
	require.ErrorIs(t, err, common.ErrConflict)

	// A different user can reuse the name.
	_, err = f.coordinator.CreateAccount(ctx, f.other, AccountRequest{
		Name: "Vacation Fund",
		Type: model.AccountTypeSavings,
	})
	require.NoError(t, err)
}

func TestCreateAccountCurrencyFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.user.Settings.Currency = "EUR"
	account, err := f.coordinator.CreateAccount(ctx, f.user, AccountRequest{
		Name: "Euro Cash",
		Type: model.AccountTypeCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", account.Currency)

	account, err = f.coordinator.CreateAccount(ctx, f.user, AccountRequest{
		Name:     "Kronor",
		Type:     model.AccountTypeCash,
		Currency: "SEK",
	})
	require.NoError(t, err)
	assert.Equal(t, "SEK", account.Currency)
}

func TestCreateAccountValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.CreateAccount(ctx, f.user, AccountRequest{Type: model.AccountTypeCash})
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = f.coordinator.CreateAccount(ctx, f.user, AccountRequest{Name: "X", Type: "WALLET"})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestUpdateAccountNeverTouchesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.CreateTransaction(ctx, f.user, incomeRequest(f, 12300))
	require.NoError(t, err)

	updated, err := f.coordinator.UpdateAccount(ctx, f.user, f.checking.ID, AccountRequest{
		Name: "Main Checking",
		Type: model.AccountTypeChecking,
	})
	require.NoError(t, err)
	assert.Equal(t, "Main Checking", updated.Name)
	assert.Equal(t, model.Money(12300), updated.Balance)
}

func TestGetAccountForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.GetAccount(context.Background(), f.other, f.checking.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Blocked while transactions reference it.
	txn, err := f.coordinator.CreateTransaction(ctx, f.user, incomeRequest(f, 1000))
	require.NoError(t, err)
	err = f.coordinator.DeleteAccount(ctx, f.user, f.checking.ID)
	require.ErrorIs(t, err, common.ErrConflict)

	// Free once the transaction is gone.
	require.NoError(t, f.coordinator.DeleteTransaction(ctx, f.user, txn.ID))
	require.NoError(t, f.coordinator.DeleteAccount(ctx, f.user, f.checking.ID))

	_, err = f.coordinator.GetAccount(ctx, f.user, f.checking.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

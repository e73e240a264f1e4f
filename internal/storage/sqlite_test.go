package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testUser(email string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "hash",
		Settings:     model.UserSettings{Currency: "USD", Theme: "dark"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testAccount(userID, name string) *model.Account {
	now := time.Now().UTC()
	return &model.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      model.AccountTypeChecking,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testCategory(userID, name string, typ model.TransactionType) *model.Category {
	now := time.Now().UTC()
	return &model.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      typ,
		Color:     "#336699",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testTransaction(user *model.User, account *model.Account, category *model.Category, amount model.Money, date time.Time) *model.Transaction {
	now := time.Now().UTC()
	return &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Amount:      amount,
		Type:        category.Type,
		Date:        date,
		Description: "test transaction",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStorage(t)
	// Running migrations again on an up-to-date database is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("round@example.com")
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Settings, got.Settings)

	byEmail, err := store.GetUserByEmail(ctx, "round@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.GetUserByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("dup@example.com")))
	err := store.CreateUser(ctx, testUser("dup@example.com"))
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestAccountCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("acct@example.com")
	require.NoError(t, store.CreateUser(ctx, user))

	account := testAccount(user.ID, "Checking")
	account.Balance = 12345
	require.NoError(t, store.CreateAccount(ctx, account))

	got, err := store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Money(12345), got.Balance)

	// Lookup by name returns nil without error when absent.
	byName, err := store.GetAccountByName(ctx, user.ID, "Checking")
	require.NoError(t, err)
	require.NotNil(t, byName)
	missing, err := store.GetAccountByName(ctx, user.ID, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Name = "Main"
	got.Balance = -500
	require.NoError(t, store.UpdateAccount(ctx, got))
	got, err = store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)
	assert.Equal(t, model.Money(-500), got.Balance)

	require.NoError(t, store.DeleteAccount(ctx, account.ID))
	_, err = store.GetAccountByID(ctx, account.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	// Updating a deleted account reports not found.
	err = store.UpdateAccount(ctx, got)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateAccountDuplicateNamePerUser(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	alice := testUser("alice@example.com")
	bob := testUser("bob@example.com")
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	require.NoError(t, store.CreateAccount(ctx, testAccount(alice.ID, "Checking")))
	err := store.CreateAccount(ctx, testAccount(alice.ID, "Checking"))
	require.ErrorIs(t, err, common.ErrConflict)

	// Scoped per user: bob may reuse the name.
	require.NoError(t, store.CreateAccount(ctx, testAccount(bob.ID, "Checking")))
}

func TestGetCategoriesByUserFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("cat@example.com")
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.CreateCategory(ctx, testCategory(user.ID, "Salary", model.TypeIncome)))
	require.NoError(t, store.CreateCategory(ctx, testCategory(user.ID, "Rent", model.TypeExpense)))
	require.NoError(t, store.CreateCategory(ctx, testCategory(user.ID, "Food", model.TypeExpense)))

	all, err := store.GetCategoriesByUser(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	expense := model.TypeExpense
	expenses, err := store.GetCategoriesByUser(ctx, user.ID, &expense)
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	byName, err := store.GetCategoryByNameAndType(ctx, user.ID, "Rent", model.TypeExpense)
	require.NoError(t, err)
	require.NotNil(t, byName)
	absent, err := store.GetCategoryByNameAndType(ctx, user.ID, "Rent", model.TypeIncome)
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestGetTransactionsFilters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("filter@example.com")
	require.NoError(t, store.CreateUser(ctx, user))
	account := testAccount(user.ID, "Checking")
	other := testAccount(user.ID, "Savings")
	require.NoError(t, store.CreateAccount(ctx, account))
	require.NoError(t, store.CreateAccount(ctx, other))
	salary := testCategory(user.ID, "Salary", model.TypeIncome)
	rent := testCategory(user.ID, "Rent", model.TypeExpense)
	require.NoError(t, store.CreateCategory(ctx, salary))
	require.NoError(t, store.CreateCategory(ctx, rent))

	for day := 1; day <= 6; day++ {
		category := salary
		target := account
		if day%2 == 0 {
			category = rent
			target = other
		}
		txn := testTransaction(user, target, category, model.Money(day*100),
			time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC))
		require.NoError(t, store.CreateTransaction(ctx, txn))
	}

	// Unfiltered, default pagination.
	page, err := store.GetTransactions(ctx, user.ID, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 6)
	// Ordered newest first.
	assert.True(t, page.Items[0].Date.After(page.Items[5].Date))

	// Pagination slices without changing the total.
	page, err = store.GetTransactions(ctx, user.ID, service.TransactionFilter{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 2)

	// By account.
	page, err = store.GetTransactions(ctx, user.ID, service.TransactionFilter{AccountID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	// By category and type together.
	income := model.TypeIncome
	page, err = store.GetTransactions(ctx, user.ID, service.TransactionFilter{Type: &income, CategoryID: &salary.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	// Date range is inclusive.
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	page, err = store.GetTransactions(ctx, user.ID, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestAnalyticsQueries(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("sum@example.com")
	require.NoError(t, store.CreateUser(ctx, user))
	account := testAccount(user.ID, "Checking")
	require.NoError(t, store.CreateAccount(ctx, account))
	salary := testCategory(user.ID, "Salary", model.TypeIncome)
	rent := testCategory(user.ID, "Rent", model.TypeExpense)
	food := testCategory(user.ID, "Food", model.TypeExpense)
	require.NoError(t, store.CreateCategory(ctx, salary))
	require.NoError(t, store.CreateCategory(ctx, rent))
	require.NoError(t, store.CreateCategory(ctx, food))

	june := func(day int) time.Time { return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, store.CreateTransaction(ctx, testTransaction(user, account, salary, 500000, june(1))))
	require.NoError(t, store.CreateTransaction(ctx, testTransaction(user, account, rent, 150000, june(2))))
	require.NoError(t, store.CreateTransaction(ctx, testTransaction(user, account, food, 30000, june(3))))
	require.NoError(t, store.CreateTransaction(ctx, testTransaction(user, account, food, 20000, june(20))))

	total, err := store.SumByType(ctx, user.ID, model.TypeExpense)
	require.NoError(t, err)
	assert.Equal(t, model.Money(200000), total)

	// Empty result sums to zero, not an error.
	none, err := store.SumByType(ctx, uuid.NewString(), model.TypeExpense)
	require.NoError(t, err)
	assert.Equal(t, model.Money(0), none)

	period, err := store.SumByTypeAndPeriod(ctx, user.ID, model.TypeExpense, june(1), june(10))
	require.NoError(t, err)
	assert.Equal(t, model.Money(180000), period)

	count, err := store.CountByPeriod(ctx, user.ID, june(1), june(10))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	byCategory, err := store.SumByCategory(ctx, user.ID, model.TypeExpense, june(1), june(30))
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Rent", byCategory[0].CategoryName)
	assert.Equal(t, model.Money(150000), byCategory[0].Total)
	assert.Equal(t, "Food", byCategory[1].CategoryName)
	assert.Equal(t, model.Money(50000), byCategory[1].Total)
}

func TestBeginTxRollbackDiscardsWrites(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("tx@example.com")
	require.NoError(t, store.CreateUser(ctx, user))
	account := testAccount(user.ID, "Checking")
	require.NoError(t, store.CreateAccount(ctx, account))
	category := testCategory(user.ID, "Salary", model.TypeIncome)
	require.NoError(t, store.CreateCategory(ctx, category))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	txn := testTransaction(user, account, category, 9900, time.Now().UTC())
	require.NoError(t, tx.CreateTransaction(ctx, txn))

	account.Balance = 9900
	require.NoError(t, tx.UpdateAccount(ctx, account))
	require.NoError(t, tx.Rollback())

	// Neither write survived the rollback.
	_, err = store.GetTransactionByID(ctx, txn.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	got, err := store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Money(0), got.Balance)
}

func TestBeginTxCommitPersistsWrites(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	user := testUser("commit@example.com")
	require.NoError(t, store.CreateUser(ctx, user))
	account := testAccount(user.ID, "Checking")
	require.NoError(t, store.CreateAccount(ctx, account))
	category := testCategory(user.ID, "Salary", model.TypeIncome)
	require.NoError(t, store.CreateCategory(ctx, category))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	txn := testTransaction(user, account, category, 9900, time.Now().UTC())
	require.NoError(t, tx.CreateTransaction(ctx, txn))
	account.Balance = 9900
	require.NoError(t, tx.UpdateAccount(ctx, account))
	require.NoError(t, tx.Commit())

	got, err := store.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Money(9900), got.Balance)
	_, err = store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
}

func TestValidationRejectsBadInput(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.Error(t, store.CreateUser(ctx, nil))
	_, err := store.GetUserByID(ctx, "")
	require.Error(t, err)
}

package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
	"github.com/tallyapp/tally/internal/storage"
)

type fixture struct {
	store       service.Storage
	coordinator *ledger.Coordinator
	aggregator  *Aggregator
	reporter    *Reporter
	user        *model.User
	account     *model.Account
	salary      *model.Category
	groceries   *model.Category
	rent        *model.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	f := &fixture{
		store:       store,
		coordinator: ledger.NewCoordinator(store),
		aggregator:  NewAggregator(store),
	}
	f.reporter = NewReporter(store, f.aggregator)

	now := time.Now().UTC()
	f.user = &model.User{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        "test@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(ctx, f.user))

	f.account = &model.Account{
		ID:        uuid.NewString(),
		UserID:    f.user.ID,
		Name:      "Checking",
		Type:      model.AccountTypeChecking,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateAccount(ctx, f.account))

	f.salary = f.seedCategory(t, "Salary", model.TypeIncome)
	f.groceries = f.seedCategory(t, "Groceries", model.TypeExpense)
	f.rent = f.seedCategory(t, "Rent", model.TypeExpense)
	return f
}

func (f *fixture) seedCategory(t *testing.T, name string, typ model.TransactionType) *model.Category {
	t.Helper()
	now := time.Now().UTC()
	category := &model.Category{
		ID:        uuid.NewString(),
		UserID:    f.user.ID,
		Name:      name,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.CreateCategory(context.Background(), category))
	return category
}

func (f *fixture) addTransaction(t *testing.T, day int, typ model.TransactionType, category *model.Category, amount model.Money, description string) *model.Transaction {
	t.Helper()
	txn, err := f.coordinator.CreateTransaction(context.Background(), f.user, ledger.TransactionRequest{
		Date:        time.Date(2025, 4, day, 12, 0, 0, 0, time.UTC),
		AccountID:   f.account.ID,
		CategoryID:  category.ID,
		Description: description,
		Type:        typ,
		Amount:      amount,
	})
	require.NoError(t, err)
	return txn
}

var (
	periodStart = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC)
)

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addTransaction(t, 1, model.TypeIncome, f.salary, 300000, "April salary")
	f.addTransaction(t, 5, model.TypeExpense, f.rent, 120000, "April rent")
	f.addTransaction(t, 8, model.TypeExpense, f.groceries, 15050, "weekly shop")
	f.addTransaction(t, 15, model.TypeExpense, f.groceries, 9950, "weekly shop")

	summary, err := f.aggregator.Summarize(ctx, f.user, periodStart, periodEnd)
	require.NoError(t, err)

	assert.Equal(t, model.Money(300000), summary.TotalIncome)
	assert.Equal(t, model.Money(145000), summary.TotalExpense)
	assert.Equal(t, model.Money(155000), summary.Balance)
	assert.Equal(t, 4, summary.TransactionCount)

	require.Len(t, summary.IncomeByCategory, 1)
	assert.Equal(t, "Salary", summary.IncomeByCategory[0].CategoryName)

	// Expense breakdown is ordered by descending total.
	require.Len(t, summary.ExpensesByCategory, 2)
	assert.Equal(t, "Rent", summary.ExpensesByCategory[0].CategoryName)
	assert.Equal(t, model.Money(120000), summary.ExpensesByCategory[0].Total)
	assert.Equal(t, "Groceries", summary.ExpensesByCategory[1].CategoryName)
	assert.Equal(t, model.Money(25000), summary.ExpensesByCategory[1].Total)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addTransaction(t, 1, model.TypeIncome, f.salary, 5000, "")

	first, err := f.aggregator.Summarize(ctx, f.user, periodStart, periodEnd)
	require.NoError(t, err)
	second, err := f.aggregator.Summarize(ctx, f.user, periodStart, periodEnd)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummarizeExcludesOutOfPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addTransaction(t, 10, model.TypeIncome, f.salary, 5000, "")

	may := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mayEnd := time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)
	summary, err := f.aggregator.Summarize(ctx, f.user, may, mayEnd)
	require.NoError(t, err)

	assert.Equal(t, model.Money(0), summary.TotalIncome)
	assert.Equal(t, 0, summary.TransactionCount)
	assert.Empty(t, summary.IncomeByCategory)
}

func TestCurrentBalanceMatchesAccountBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addTransaction(t, 1, model.TypeIncome, f.salary, 300000, "")
	f.addTransaction(t, 5, model.TypeExpense, f.rent, 120000, "")
	deleted := f.addTransaction(t, 6, model.TypeExpense, f.groceries, 7777, "")
	require.NoError(t, f.coordinator.DeleteTransaction(ctx, f.user, deleted.ID))

	derived, err := f.aggregator.CurrentBalance(ctx, f.user)
	require.NoError(t, err)

	account, err := f.store.GetAccountByID(ctx, f.account.ID)
	require.NoError(t, err)

	assert.Equal(t, model.Money(180000), derived)
	assert.Equal(t, account.Balance, derived)
}

func TestDefaultPeriod(t *testing.T) {
	now := time.Date(2025, 4, 30, 12, 0, 0, 0, time.UTC)
	start, end := DefaultPeriod(now)
	assert.Equal(t, now, end)
	assert.Equal(t, time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC), start)
}

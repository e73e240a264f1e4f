// Package service defines the contracts between the ledger core and its
// collaborators: the persistence layer and the analytics result types.
package service

import (
	"context"
	"time"

	"github.com/tallyapp/tally/internal/model"
)

// TransactionFilter defines filtering and pagination options for
// transaction queries. Nil fields are left unconstrained.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *model.TransactionType
	AccountID  *string
	CategoryID *string
	Page       int
	Limit      int
}

// Page is a single page of transactions plus the unpaginated total.
type Page struct {
	Items []model.Transaction
	Total int
	Page  int
	Limit int
}

// Reader groups the read-side storage operations. Both the root store and
// an open transaction satisfy it.
type Reader interface {
	// User operations
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Account operations
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetAccountsByUser(ctx context.Context, userID string) ([]model.Account, error)
	GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error)
	CountTransactionsByAccount(ctx context.Context, accountID string) (int, error)

	// Category operations
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategoriesByUser(ctx context.Context, userID string, typ *model.TransactionType) ([]model.Category, error)
	GetCategoryByNameAndType(ctx context.Context, userID, name string, typ model.TransactionType) (*model.Category, error)
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)

	// Transaction operations
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, userID string, filter TransactionFilter) (*Page, error)
	GetTransactionsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error)

	// Aggregate queries used by analytics
	SumByType(ctx context.Context, userID string, typ model.TransactionType) (model.Money, error)
	SumByTypeAndPeriod(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) (model.Money, error)
	CountByPeriod(ctx context.Context, userID string, start, end time.Time) (int, error)
	SumByCategory(ctx context.Context, userID string, typ model.TransactionType, start, end time.Time) ([]CategoryTotal, error)
}

// Writer groups the write-side storage operations.
type Writer interface {
	CreateUser(ctx context.Context, user *model.User) error

	CreateAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	Reader
	Writer

	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is an open atomic unit. All reads and writes performed through it
// become visible together on Commit or not at all.
type Tx interface {
	Reader
	Writer

	Commit() error
	Rollback() error
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Total        model.Money
}

// DateRange represents a closed time period.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// AnalyticsSummary contains period totals and per-category breakdowns.
// Balance is derived (income minus expense), independent of any stored
// account balance.
type AnalyticsSummary struct {
	Period             DateRange
	IncomeByCategory   []CategoryTotal
	ExpensesByCategory []CategoryTotal
	TotalIncome        model.Money
	TotalExpense       model.Money
	Balance            model.Money
	TransactionCount   int
}

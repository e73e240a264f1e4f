package model

import "time"

// TransactionType indicates the direction of a transaction. The amount is
// always positive; direction is carried by the type, not the sign.
type TransactionType string

const (
	// TypeIncome increases the owning account's balance.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense decreases the owning account's balance.
	TypeExpense TransactionType = "EXPENSE"
)

// ValidTransactionType reports whether t is INCOME or EXPENSE.
func ValidTransactionType(t TransactionType) bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single dated financial movement. Its account and
// category references are mutable on update but must always resolve to
// entities owned by the same user.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	UserID      string
	AccountID   string
	CategoryID  string
	Description string
	Notes       string
	Type        TransactionType
	Amount      Money
}

package model

import "time"

// AccountType enumerates the kinds of accounts a user can hold.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCash       AccountType = "CASH"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

// ValidAccountType reports whether t is a known account type.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash,
		AccountTypeCreditCard, AccountTypeInvestment:
		return true
	}
	return false
}

// Account is a user-owned wallet. Balance must equal the sum of all signed
// live transaction amounts applied to it (income positive, expense negative)
// and is only ever mutated through the ledger coordinator.
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	UserID    string
	Name      string
	Currency  string
	Type      AccountType
	Balance   Money
}

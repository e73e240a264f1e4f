// Package model defines the domain entities for the tally ledger.
package model

import "time"

// User owns accounts, categories, and transactions. The ID is immutable
// after registration.
type User struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Settings     UserSettings
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	Currency string `json:"currency,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

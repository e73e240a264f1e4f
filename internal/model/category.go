package model

import "time"

// Category is a user-owned label partitioning transactions by direction.
// Its type is fixed at creation; a transaction referencing the category
// must carry the same type.
type Category struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	UserID    string
	Name      string
	Color     string
	Type      TransactionType
}

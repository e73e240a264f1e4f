package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tallyapp/tally/internal/model"
)

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name      string
		current   model.Money
		newAmount model.Money
		newType   model.TransactionType
		oldAmount model.Money
		oldType   model.TransactionType
		want      model.Money
	}{
		{
			name:      "create income",
			current:   0,
			newAmount: 10000,
			newType:   model.TypeIncome,
			want:      10000,
		},
		{
			name:      "create expense",
			current:   50000,
			newAmount: 2500,
			newType:   model.TypeExpense,
			want:      47500,
		},
		{
			name:      "expense below zero allowed",
			current:   1000,
			newAmount: 2500,
			newType:   model.TypeExpense,
			want:      -1500,
		},
		{
			name:      "amount change same type",
			current:   10000,
			newAmount: 15000,
			newType:   model.TypeIncome,
			oldAmount: 10000,
			oldType:   model.TypeIncome,
			want:      15000,
		},
		{
			name:      "type flip income to expense",
			current:   10000,
			newAmount: 4000,
			newType:   model.TypeExpense,
			oldAmount: 10000,
			oldType:   model.TypeIncome,
			want:      -4000,
		},
		{
			name:      "type flip expense to income",
			current:   -4000,
			newAmount: 10000,
			newType:   model.TypeIncome,
			oldAmount: 4000,
			oldType:   model.TypeExpense,
			want:      10000,
		},
		{
			name:      "no-op update",
			current:   7700,
			newAmount: 300,
			newType:   model.TypeExpense,
			oldAmount: 300,
			oldType:   model.TypeExpense,
			want:      7700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDelta(tt.current, tt.newAmount, tt.newType, tt.oldAmount, tt.oldType)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The canonical lifecycle: a 100.00 income lands on an empty account, is
// edited into a 40.00 expense, and is finally deleted. Every intermediate
// balance must be exact and the delete must restore zero.
func TestApplyDeltaLifecycle(t *testing.T) {
	balance := applyCreate(0, 10000, model.TypeIncome)
	assert.Equal(t, model.Money(10000), balance)

	balance = ApplyDelta(balance, 4000, model.TypeExpense, 10000, model.TypeIncome)
	assert.Equal(t, model.Money(-4000), balance)

	balance = applyRollback(balance, 4000, model.TypeExpense)
	assert.Equal(t, model.Money(0), balance)
}

func TestApplyRollbackInvertsCreate(t *testing.T) {
	amounts := []model.Money{1, 99, 12345, 1000000}
	for _, amount := range amounts {
		for _, typ := range []model.TransactionType{model.TypeIncome, model.TypeExpense} {
			start := model.Money(31337)
			created := applyCreate(start, amount, typ)
			assert.Equal(t, start, applyRollback(created, amount, typ),
				"rollback of %s %s must restore the original balance", typ, amount)
		}
	}
}

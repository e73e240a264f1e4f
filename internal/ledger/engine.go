// Package ledger implements the balance-consistency core: the pure balance
// engine and the coordinator that applies transaction writes atomically.
package ledger

import "github.com/tallyapp/tally/internal/model"

// ApplyDelta computes the next balance for an account given the net effect
// of removing an old transaction state and applying a new one. It never
// persists anything; the caller owns the commit boundary.
//
// An oldAmount of zero means there is no prior state (create). A newAmount
// of zero makes the apply step a no-op (delete). Income adds, expense
// subtracts; cents arithmetic keeps the result exact at scale 2.
func ApplyDelta(current, newAmount model.Money, newType model.TransactionType, oldAmount model.Money, oldType model.TransactionType) model.Money {
	// Reverse the effect of the old transaction state, if any.
	if oldAmount > 0 {
		if oldType == model.TypeIncome {
			current -= oldAmount
		} else {
			current += oldAmount
		}
	}

	if newType == model.TypeIncome {
		current += newAmount
	} else {
		current -= newAmount
	}

	return current
}

// applyCreate is ApplyDelta with no prior state.
func applyCreate(current, amount model.Money, typ model.TransactionType) model.Money {
	return ApplyDelta(current, amount, typ, 0, model.TypeIncome)
}

// applyRollback is ApplyDelta with no new state: it restores the balance to
// what it was before the old transaction existed.
func applyRollback(current, oldAmount model.Money, oldType model.TransactionType) model.Money {
	return ApplyDelta(current, 0, model.TypeIncome, oldAmount, oldType)
}

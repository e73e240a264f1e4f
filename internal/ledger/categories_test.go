package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	category, err := f.coordinator.CreateCategory(ctx, f.user, CategoryRequest{
		Name:  "Rent",
		Type:  model.TypeExpense,
		Color: "#ff8800",
	})
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", category.Color)

	// Same name and type conflicts.
	_, err = f.coordinator.CreateCategory(ctx, f.user, CategoryRequest{
		Name: "Rent",
		Type: model.TypeExpense,
	})
	require.ErrorIs(t, err, common.ErrConflict)

	// Same name with the other type is allowed.
	_, err = f.coordinator.CreateCategory(ctx, f.user, CategoryRequest{
		Name: "Rent",
		Type: model.TypeIncome,
	})
	require.NoError(t, err)
}

func TestCreateCategoryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CategoryRequest
	}{
		{name: "missing name", req: CategoryRequest{Type: model.TypeExpense}},
		{name: "bad type", req: CategoryRequest{Name: "X", Type: "BOTH"}},
		{name: "bad color", req: CategoryRequest{Name: "X", Type: model.TypeExpense, Color: "red"}},
		{name: "short hex", req: CategoryRequest{Name: "X", Type: model.TypeExpense, Color: "#fff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coordinator.CreateCategory(ctx, f.user, tt.req)
			require.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}
}

func TestListCategoriesTypeFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.coordinator.ListCategories(ctx, f.user, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	expense := model.TypeExpense
	filtered, err := f.coordinator.ListCategories(ctx, f.user, &expense)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, f.groceries.ID, filtered[0].ID)
}

func TestUpdateCategoryTypeChangeBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Renaming and recoloring is fine even with transactions attached.
	txn, err := f.coordinator.CreateTransaction(ctx, f.user, expenseRequest(f, 900))
	require.NoError(t, err)

	updated, err := f.coordinator.UpdateCategory(ctx, f.user, f.groceries.ID, CategoryRequest{
		Name: "Food",
		Type: model.TypeExpense,
	})
	require.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)

	// Flipping the type would orphan the validated transaction.
	_, err = f.coordinator.UpdateCategory(ctx, f.user, f.groceries.ID, CategoryRequest{
		Name: "Food",
		Type: model.TypeIncome,
	})
	require.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, f.coordinator.DeleteTransaction(ctx, f.user, txn.ID))
	_, err = f.coordinator.UpdateCategory(ctx, f.user, f.groceries.ID, CategoryRequest{
		Name: "Food",
		Type: model.TypeIncome,
	})
	require.NoError(t, err)
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txn, err := f.coordinator.CreateTransaction(ctx, f.user, expenseRequest(f, 900))
	require.NoError(t, err)

	err = f.coordinator.DeleteCategory(ctx, f.user, f.groceries.ID)
	require.ErrorIs(t, err, common.ErrConflict)

	require.NoError(t, f.coordinator.DeleteTransaction(ctx, f.user, txn.ID))
	require.NoError(t, f.coordinator.DeleteCategory(ctx, f.user, f.groceries.ID))

	_, err = f.coordinator.GetCategory(ctx, f.user, f.groceries.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategoryForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)

	err := f.coordinator.DeleteCategory(context.Background(), f.other, f.groceries.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
}

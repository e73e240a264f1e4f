package ledger

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryRequest carries the client-supplied fields of a category create or
// update.
type CategoryRequest struct {
	Name  string
	Color string
	Type  model.TransactionType
}

func validateCategoryRequest(req *CategoryRequest) error {
	if req.Name == "" {
		return common.InvalidArgumentf("category name is required")
	}
	if !model.ValidTransactionType(req.Type) {
		return common.InvalidArgumentf("category type must be INCOME or EXPENSE, got %q", req.Type)
	}
	if req.Color != "" && !hexColorRe.MatchString(req.Color) {
		return common.InvalidArgumentf("color must be a hex code like #aabbcc, got %q", req.Color)
	}
	return nil
}

// CreateCategory creates a new category for the user. Name is unique per
// owner and type.
func (c *Coordinator) CreateCategory(ctx context.Context, user *model.User, req CategoryRequest) (*model.Category, error) {
	if err := validateCategoryRequest(&req); err != nil {
		return nil, err
	}

	existing, err := c.storage.GetCategoryByNameAndType(ctx, user.ID, req.Name, req.Type)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.Conflictf("category with name %q and type %q already exists", req.Name, req.Type)
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      req.Name,
		Type:      req.Type,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory returns one of the user's categories by id.
func (c *Coordinator) GetCategory(ctx context.Context, user *model.User, id string) (*model.Category, error) {
	category, err := c.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != user.ID {
		return nil, common.Forbiddenf("category does not belong to the current user")
	}
	return category, nil
}

// ListCategories returns the user's categories, optionally filtered by type.
func (c *Coordinator) ListCategories(ctx context.Context, user *model.User, typ *model.TransactionType) ([]model.Category, error) {
	if typ != nil && !model.ValidTransactionType(*typ) {
		return nil, common.InvalidArgumentf("category type must be INCOME or EXPENSE, got %q", *typ)
	}
	return c.storage.GetCategoriesByUser(ctx, user.ID, typ)
}

// UpdateCategory changes a category's name, type, or color. Changing the
// type is rejected while transactions reference the category, since they
// were validated against the original type.
func (c *Coordinator) UpdateCategory(ctx context.Context, user *model.User, id string, req CategoryRequest) (*model.Category, error) {
	if err := validateCategoryRequest(&req); err != nil {
		return nil, err
	}

	category, err := c.GetCategory(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req.Type != category.Type {
		count, err := c.storage.CountTransactionsByCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, common.Conflictf("cannot change type of category with %d associated transactions", count)
		}
	}

	category.Name = req.Name
	category.Type = req.Type
	category.Color = req.Color
	category.UpdatedAt = time.Now().UTC()

	if err := c.storage.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no transactions reference.
func (c *Coordinator) DeleteCategory(ctx context.Context, user *model.User, id string) error {
	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	category, err := tx.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if category.UserID != user.ID {
		return common.Forbiddenf("category does not belong to the current user")
	}

	count, err := tx.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.Conflictf("cannot delete category linked to %d transactions", count)
	}

	if err := tx.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("deleted category", "id", id, "name", category.Name)
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

const categoryColumns = `id, user_id, name, type, color, created_at, updated_at`

// CreateCategory inserts a new category. A duplicate name+type for the same
// owner surfaces as ErrConflict.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createCategory(ctx, s.db, category)
}

func (t *sqliteTx) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createCategory(ctx, t.tx, category)
}

func createCategory(ctx context.Context, q querier, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, string(category.Type),
		category.Color, category.CreatedAt, category.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return common.Conflictf("category with name %q and type %q already exists", category.Name, category.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	slog.Info("created category", "id", category.ID, "name", category.Name, "type", category.Type)
	return nil
}

// GetCategoryByID returns the category with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, s.db, id)
}

func (t *sqliteTx) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, t.tx, id)
}

func getCategoryByID(ctx context.Context, q querier, id string) (*model.Category, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category with ID %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// GetCategoryByNameAndType returns the owner's category with the given name
// and type, or nil when no such category exists.
func (s *SQLiteStorage) GetCategoryByNameAndType(ctx context.Context, userID, name string, typ model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByNameAndType(ctx, s.db, userID, name, typ)
}

func (t *sqliteTx) GetCategoryByNameAndType(ctx context.Context, userID, name string, typ model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByNameAndType(ctx, t.tx, userID, name, typ)
}

func getCategoryByNameAndType(ctx context.Context, q querier, userID, name string, typ model.TransactionType) (*model.Category, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ? AND type = ?`,
		userID, name, string(typ))
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// GetCategoriesByUser returns the user's categories ordered by name,
// optionally filtered by type.
func (s *SQLiteStorage) GetCategoriesByUser(ctx context.Context, userID string, typ *model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoriesByUser(ctx, s.db, userID, typ)
}

func (t *sqliteTx) GetCategoriesByUser(ctx context.Context, userID string, typ *model.TransactionType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoriesByUser(ctx, t.tx, userID, typ)
}

func getCategoriesByUser(ctx context.Context, q querier, userID string, typ *model.TransactionType) ([]model.Category, error) {
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if typ != nil {
		query += ` AND type = ?`
		args = append(args, string(*typ))
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var catType string
		var color sql.NullString
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &catType, &color,
			&cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Type = model.TransactionType(catType)
		cat.Color = color.String
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user_id", userID, "count", len(categories))
	return categories, nil
}

// UpdateCategory persists the category's mutable fields.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCategory(ctx, s.db, category)
}

func (t *sqliteTx) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateCategory(ctx, t.tx, category)
}

func updateCategory(ctx context.Context, q querier, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, type = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, string(category.Type), category.Color,
		category.UpdatedAt, category.ID,
	)
	if isUniqueViolation(err) {
		return common.Conflictf("category with name %q and type %q already exists", category.Name, category.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("category with ID %s", category.ID)
	}
	return nil
}

// DeleteCategory removes a category row. Callers must have verified that no
// transactions reference it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

func (t *sqliteTx) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, t.tx, id)
}

func deleteCategory(ctx context.Context, q querier, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("category with ID %s", id)
	}

	slog.Info("deleted category", "id", id)
	return nil
}

// CountTransactionsByCategory returns the number of transactions referencing
// the category.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByCategory(ctx, s.db, categoryID)
}

func (t *sqliteTx) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByCategory(ctx, t.tx, categoryID)
}

func countTransactionsByCategory(ctx context.Context, q querier, categoryID string) (int, error) {
	if err := validateString(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanCategory(row *sql.Row) (*model.Category, error) {
	var cat model.Category
	var typ string
	var color sql.NullString
	err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &typ, &color,
		&cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cat.Type = model.TransactionType(typ)
	cat.Color = color.String
	return &cat, nil
}

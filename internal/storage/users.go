package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
)

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// CreateUser inserts a new user. A duplicate email surfaces as ErrConflict.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createUser(ctx, s.db, user)
}

func (t *sqliteTx) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createUser(ctx, t.tx, user)
}

func createUser(ctx context.Context, q querier, user *model.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	settings, err := json.Marshal(user.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal user settings: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.FirstName, user.LastName, user.Email,
		user.PasswordHash, string(settings), user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return common.Conflictf("user with email %q already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	slog.Info("created user", "id", user.ID, "email", user.Email)
	return nil
}

// GetUserByID returns the user with the given id, or ErrNotFound.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getUserByID(ctx, s.db, id)
}

func (t *sqliteTx) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getUserByID(ctx, t.tx, id)
}

func getUserByID(ctx context.Context, q querier, id string) (*model.User, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, settings, created_at, updated_at
		FROM users
		WHERE id = ?`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("user with ID %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getUserByEmail(ctx, s.db, email)
}

func (t *sqliteTx) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getUserByEmail(ctx, t.tx, email)
}

func getUserByEmail(ctx context.Context, q querier, email string) (*model.User, error) {
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, settings, created_at, updated_at
		FROM users
		WHERE email = ?`, email)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("user with email %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var settings sql.NullString
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &settings, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if settings.Valid && settings.String != "" {
		if err := json.Unmarshal([]byte(settings.String), &user.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user settings: %w", err)
		}
	}
	return &user, nil
}

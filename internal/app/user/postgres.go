package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockwatch/internal/app/db"
)

// Ensure PostgresStore satisfies Store at compile time.
var _ Store = (*PostgresStore)(nil)

// PostgresStore keeps users in the PostgreSQL users table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by sqlDB.
func NewPostgresStore(sqlDB *sql.DB) *PostgresStore {
	return &PostgresStore{db: sqlDB}
}

const selectUser = `SELECT id, username, password_hash, symbols, created_at FROM users`

// FindByUsername fetches a user by username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, selectUser+` WHERE username = $1`, username)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, selectUser+` WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a user row.
func (s *PostgresStore) Create(ctx context.Context, username, passwordHash string, symbols []string) (*User, error) {
	encoded, err := encodeSymbols(symbols)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO users (username, password_hash, symbols)
		VALUES ($1, $2, $3)
		RETURNING id, username, password_hash, symbols, created_at`

	created, err := scanUser(s.db.QueryRowContext(ctx, query, username, passwordHash, encoded))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// UpdateSymbols replaces the symbol list of user id.
func (s *PostgresStore) UpdateSymbols(ctx context.Context, id int64, symbols []string) error {
	return updateSymbols(ctx, s.db, id, symbols)
}

// ModifySymbols locks the user row, applies fn to its symbols and stores the
// result in the same transaction, so concurrent edits cannot overwrite each other.
func (s *PostgresStore) ModifySymbols(ctx context.Context, id int64, fn ModifyFunc) ([]string, error) {
	var stored []string

	err := db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT symbols FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		current, err := decodeSymbols(raw)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		if err := updateSymbols(ctx, tx, id, next); err != nil {
			return err
		}
		stored = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func updateSymbols(ctx context.Context, q db.DBTX, id int64, symbols []string) error {
	encoded, err := encodeSymbols(symbols)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `UPDATE users SET symbols = $1 WHERE id = $2`, encoded, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u   User
		raw string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &raw, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	symbols, err := decodeSymbols(raw)
	if err != nil {
		return nil, err
	}
	u.Symbols = symbols
	return &u, nil
}

package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists indicates the username is taken at the storage level.
	ErrAlreadyExists = errors.New("user already exists")
)

// ModifyFunc receives the current symbol list and returns the list to store.
// Returning an error aborts the edit and nothing is written.
type ModifyFunc func(symbols []string) ([]string, error)

// Store is the credential store used by the request handlers.
type Store interface {
	// FindByUsername looks a user up by exact, case-sensitive username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID looks a user up by primary key.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Create inserts a new user and returns it with its generated id.
	Create(ctx context.Context, username, passwordHash string, symbols []string) (*User, error)

	// UpdateSymbols overwrites the whole symbol list of a user.
	UpdateSymbols(ctx context.Context, id int64, symbols []string) error

	// ModifySymbols reads the symbol list, applies fn and writes the result
	// back as one atomic step. It returns the stored list.
	ModifySymbols(ctx context.Context, id int64, fn ModifyFunc) ([]string, error)
}

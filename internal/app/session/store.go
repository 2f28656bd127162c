/*
Package session keeps server-side login sessions.

A browser holds a signed token naming an opaque session id; the id maps to a
record in a Store (in memory or in Redis) that carries the user id.
*/
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Data is the state kept for one session.
type Data struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists session records with a time to live.
type Store interface {
	Save(ctx context.Context, id string, data Data, ttl time.Duration) error
	Get(ctx context.Context, id string) (Data, error)
	Delete(ctx context.Context, id string) error
}

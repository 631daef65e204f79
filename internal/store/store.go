// Package store defines the entity store adapter: typed collections over the
// four record kinds and the errors every backend reports through.
package store

import (
	"context"
	"errors"
	"fmt"

	"estategraph/server/internal/models"
)

var (
	// ErrNotFound is returned by FindByID and FindOne when nothing matches.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable wraps transport or connectivity failures of a backend.
	ErrUnavailable = errors.New("store unavailable")
)

// Filter is an equality match keyed by storage field path, e.g.
// {"address.city": "Springfield"}. An empty filter matches everything.
type Filter map[string]any

// Sort orders FindOne candidates by a storage field.
type Sort struct {
	Field string
	Desc  bool
}

// Collection is the typed accessor for one record kind.
type Collection[T any] interface {
	// Create assigns a fresh identifier to doc and persists it.
	Create(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	// Find returns matching records in insertion order.
	Find(ctx context.Context, filter Filter) ([]T, error)
	// FindOne returns the first match under sort, or ErrNotFound.
	FindOne(ctx context.Context, filter Filter, sort *Sort) (*T, error)
}

// Store groups the collections of one backend.
type Store interface {
	Properties() Collection[models.Property]
	Transactions() Collection[models.Transaction]
	Agents() Collection[models.Agent]
	Neighborhoods() Collection[models.Neighborhood]
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Unavailable marks err as a backend failure while keeping it inspectable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Lookup resolves a weak reference. A nil or empty id, or a dangling one,
// yields (nil, nil); only backend failures are returned as errors.
func Lookup[T any](ctx context.Context, c Collection[T], id *string) (*T, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	doc, err := c.FindByID(ctx, *id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

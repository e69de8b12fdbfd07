// Package store persists saved articles.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/premium-reader/internal/types"
)

// Paging defaults for List.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Backend names reported by Store.Backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// ErrNotFound is returned when no article has the requested id.
var ErrNotFound = errors.New("article not found")

// ListOptions selects a page of saved articles, newest first.
type ListOptions struct {
	UserID string
	Limit  int
	Offset int
}

// Normalize applies the paging defaults and bounds.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Store is the saved-article collaborator.
type Store interface {
	// Save inserts the article, or updates the existing one with the same URL
	// and user. created is false on update.
	Save(ctx context.Context, article *types.SavedArticle) (saved *types.SavedArticle, created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*types.SavedArticle, error)
	// List returns one page and the total number of matching articles.
	List(ctx context.Context, opts ListOptions) ([]types.SavedArticle, int, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Backend() string
	Close()
}

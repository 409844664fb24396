package store

import (
	"context"
	"errors"

	"article-catalog/internal/model"
)

var (
	ErrNotFound = errors.New("article not found")
)

// Store is keyed persistence for articles. Implementations must be safe for
// concurrent use.
type Store interface {
	Exists(ctx context.Context, code string) (bool, error)
	// Save inserts the article or overwrites the one sharing its code.
	Save(ctx context.Context, article *model.Article) error
	// Delete removes the article; a missing code is not an error.
	Delete(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	Close() error
}

const keyPrefix = "article:"

func articleKey(code string) string {
	return keyPrefix + code
}

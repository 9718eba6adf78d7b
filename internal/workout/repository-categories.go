package workout

import (
	"context"
	"fmt"
)

// sqliteCategoryRepository stores the category configuration.
type sqliteCategoryRepository struct {
	baseRepository
}

// List returns the configured categories, or the seed categories when none are stored. The protected categories
// are always present.
func (r *sqliteCategoryRepository) List(ctx context.Context, q querier) (Categories, error) {
	var categories Categories
	found, err := r.load(ctx, q, keyCategoryConfig, &categories)
	if err != nil {
		return nil, fmt.Errorf("load category config: %w", err)
	}
	if !found || len(categories) == 0 {
		return DefaultCategories(), nil
	}
	return categories.withProtected(), nil
}

// Set stores the category configuration.
func (r *sqliteCategoryRepository) Set(ctx context.Context, q querier, categories Categories) error {
	return r.store(ctx, q, keyCategoryConfig, categories.withProtected())
}

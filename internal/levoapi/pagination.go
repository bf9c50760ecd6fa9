package levoapi

import "context"

type pageFunc[T any] func(ctx context.Context, page int) ([]T, PageMeta, error)

// fetchAllPages reads page 0, then pages 1..totalPages-1 as reported by the
// first response. Items are returned in arrival order.
func fetchAllPages[T any](ctx context.Context, fetch pageFunc[T]) ([]T, error) {
	items, meta, err := fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	for page := 1; page < meta.TotalPages; page++ {
		next, _, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		items = append(items, next...)
	}

	return items, nil
}

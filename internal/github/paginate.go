package github

import "context"

// pageFunc fetches one page of a page-numbered listing. Pages start at 1.
type pageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// walkPages requests pages 1, 2, ... and hands each non-empty page to visit.
// It stops after an empty page, after a page shorter than perPage, or as soon
// as visit returns false. A page error aborts the walk.
func walkPages[T any](ctx context.Context, perPage int, fetch pageFunc[T], visit func(items []T) bool) error {
	for page := 1; ; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		if !visit(items) {
			return nil
		}
		if len(items) < perPage {
			return nil
		}
	}
}

// collectPages returns the items of every page in order. On error nothing
// collected so far is returned.
func collectPages[T any](ctx context.Context, perPage int, fetch pageFunc[T]) ([]T, error) {
	var all []T
	err := walkPages(ctx, perPage, fetch, func(items []T) bool {
		all = append(all, items...)
		return true
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

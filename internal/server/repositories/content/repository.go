// Package content stores the portfolio sections. Every section table shares
// the same shape (id, sort_order, created_at, updated_at plus its own
// columns), so a single generic repository serves all of them.
package content

import "context"

type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
	SetSortOrder(ctx context.Context, id string, order int) error
}

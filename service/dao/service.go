package dao

import (
	"context"
)

// Service persists records of T keyed by K. Implementations report missing
// records with ErrNotFound.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error
	Load(ctx context.Context, id K) (*T, error)
	Delete(ctx context.Context, id K) error
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
	Clear(ctx context.Context) error
}

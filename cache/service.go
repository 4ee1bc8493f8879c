package cache

import (
	"context"
	"fmt"
)

// FetchFn computes a query result from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// As converts a stored value back to T. A nil value yields the zero T, which
// keeps cached "no row" results usable for interface and pointer types.
func As[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: have %T, want %T", ErrInvalidResultType, value, zero)
	}
	return typed, nil
}

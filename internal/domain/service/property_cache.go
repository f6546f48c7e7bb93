package service

import (
	"context"

	"brokerage/internal/domain/entity"
)

// PropertyLoader fetches a property from the system of record on a cache miss.
type PropertyLoader func(ctx context.Context) (*entity.Property, error)

// PropertyCache is a read-through cache for lookups by public code.
type PropertyCache interface {
	// GetOrLoad returns the cached property for code, or calls load and
	// stores its result. Loader errors are returned unchanged.
	GetOrLoad(ctx context.Context, code string, load PropertyLoader) (*entity.Property, error)

	// Evict drops the entry for code.
	Evict(ctx context.Context, code string) error
}

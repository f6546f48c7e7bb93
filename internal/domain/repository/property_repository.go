package repository

import (
	"context"

	"brokerage/internal/domain/entity"
	"brokerage/internal/errors"

	"github.com/google/uuid"
)

// ErrPropertyNotFound is returned when no property matches the lookup.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyFilter narrows FindAll. Nil fields do not filter.
type PropertyFilter struct {
	OperationType *entity.OperationType
	State         *entity.PropertyState
	MinPriceCents *int64
	MaxPriceCents *int64
	MinSurface    *float64
	MaxSurface    *float64
	OwnerCI       *string
	CaptorID      *uuid.UUID
}

// PropertyRepository defines the operations for property persistence.
type PropertyRepository interface {
	// Create fails with DuplicatePublicCode when the code is already stored.
	Create(ctx context.Context, property *entity.Property) error

	// FindByID returns ErrPropertyNotFound when the id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error)

	// FindByPublicCode returns ErrPropertyNotFound when the code is unknown.
	FindByPublicCode(ctx context.Context, code string) (*entity.Property, error)

	// FindAll returns one page of matches in creation order plus the total
	// number of matches. page is 1-based.
	FindAll(ctx context.Context, filter PropertyFilter, page, pageSize int) ([]*entity.Property, int64, error)

	Update(ctx context.Context, property *entity.Property) error

	// Delete removes the row. Use cases soft-delete through Update instead.
	Delete(ctx context.Context, id uuid.UUID) error
}

package usecase

import (
	"context"

	"brokerage/internal/domain/entity"
	"brokerage/internal/domain/valueobject"

	"github.com/google/uuid"
)

// AddressInput describes an address created together with a property.
type AddressInput struct {
	Street    string
	City      string
	Zone      string
	Latitude  *float64
	Longitude *float64
}

// CreatePropertyInput captures a new listing. Exactly one of AddressID and
// Address is expected; Address wins when both are set.
type CreatePropertyInput struct {
	AddressID           *uuid.UUID
	Address             *AddressInput
	OwnerCI             string
	PublicCode          string
	Title               string
	Description         string
	Price               float64
	Currency            string
	Surface             float64
	OperationType       string
	CaptureCommission   *float64
	PlacementCommission *float64
}

// UpdatePropertyInput is a partial update; nil fields are left unchanged.
type UpdatePropertyInput struct {
	OwnerCI             *string
	Title               *string
	Description         *string
	Price               *float64
	Currency            *string
	Surface             *float64
	OperationType       *string
	CaptureCommission   *float64
	PlacementCommission *float64
}

// IsEmpty reports whether the update sets nothing.
func (in *UpdatePropertyInput) IsEmpty() bool {
	return in == nil || (in.OwnerCI == nil && in.Title == nil && in.Description == nil &&
		in.Price == nil && in.Currency == nil && in.Surface == nil && in.OperationType == nil &&
		in.CaptureCommission == nil && in.PlacementCommission == nil)
}

// ListPropertiesInput holds filters and the requested page.
type ListPropertiesInput struct {
	OperationType *string
	State         *string
	MinPrice      *float64
	MaxPrice      *float64
	MinSurface    *float64
	MaxSurface    *float64
	OwnerCI       *string
	CaptorID      *uuid.UUID
	Page          int
	PageSize      int
}

// ListPropertiesOutput is one page of results.
type ListPropertiesOutput struct {
	Items      []*entity.Property
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// ClosePropertyInput records who placed the property and, optionally, the
// final agreed price in the property's currency.
type ClosePropertyInput struct {
	PlacerID   uuid.UUID
	FinalPrice *float64
}

// CommissionOutput breaks down the commissions on a property.
type CommissionOutput struct {
	Base      valueobject.Money
	Capture   valueobject.Money
	Placement valueobject.Money
	Total     valueobject.Money
}

// PropertyUsecase defines the property listing operations.
type PropertyUsecase interface {
	Create(ctx context.Context, actor Actor, input *CreatePropertyInput) (*entity.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Property, error)
	GetByPublicCode(ctx context.Context, code string) (*entity.Property, error)
	List(ctx context.Context, input *ListPropertiesInput) (*ListPropertiesOutput, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input *UpdatePropertyInput) (*entity.Property, error)
	// Delete soft-deletes the property by deactivating it.
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error

	Publish(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Property, error)
	MarkInProcess(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Property, error)
	Reserve(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Property, error)
	Close(ctx context.Context, actor Actor, id uuid.UUID, input *ClosePropertyInput) (*entity.Property, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Property, error)
	Reactivate(ctx context.Context, actor Actor, id uuid.UUID) (*entity.Property, error)

	Commission(ctx context.Context, id uuid.UUID, finalPrice *float64) (*CommissionOutput, error)
	ListingQR(ctx context.Context, code string) ([]byte, error)
}

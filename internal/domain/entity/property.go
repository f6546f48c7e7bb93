// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"

	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/valueobject"

	"github.com/google/uuid"
)

// PropertyEntityName labels property errors.
const PropertyEntityName = "Propiedad"

// OperationType is the commercial operation a listing is offered for.
type OperationType string

const (
	OperationSale OperationType = "VENTA"
	OperationRent OperationType = "ALQUILER"
)

// ParseOperationType accepts VENTA or ALQUILER case-insensitively.
func ParseOperationType(raw string) (OperationType, error) {
	op := OperationType(strings.ToUpper(strings.TrimSpace(raw)))
	switch op {
	case OperationSale, OperationRent:
		return op, nil
	default:
		return "", domainerrors.NewInvalidValueError("TipoOperacion", raw, "Debe ser VENTA o ALQUILER")
	}
}

// PropertyState is the commercial status of a listing.
type PropertyState string

const (
	StateAvailable  PropertyState = "DISPONIBLE"
	StateInProcess  PropertyState = "EN_PROCESO"
	StateReserved   PropertyState = "RESERVADA"
	StateSold       PropertyState = "VENDIDA"
	StateRented     PropertyState = "ALQUILADA"
	StateInactive   PropertyState = "INACTIVA"
	statePublished  PropertyState = "PUBLICADA" // label used only in transition errors
	stateClosedWord PropertyState = "CERRADA"   // ditto
)

// ParsePropertyState accepts any lifecycle state name case-insensitively.
func ParsePropertyState(raw string) (PropertyState, error) {
	state := PropertyState(strings.ToUpper(strings.TrimSpace(raw)))
	switch state {
	case StateAvailable, StateInProcess, StateReserved, StateSold, StateRented, StateInactive:
		return state, nil
	default:
		return "", domainerrors.NewInvalidValueError("Estado", raw, "Estado de propiedad desconocido")
	}
}

// IsClosed reports whether the state is terminal.
func (s PropertyState) IsClosed() bool {
	return s == StateSold || s == StateRented
}

func (s PropertyState) String() string { return string(s) }

// Property is a listing captured by an agent and moved through its lifecycle.
type Property struct {
	ID                  uuid.UUID
	AddressID           uuid.UUID
	OwnerCI             valueobject.CI
	PublicCode          string
	Title               string
	Description         string
	Price               valueobject.Money
	Surface             float64 // square meters, > 0
	OperationType       OperationType
	State               PropertyState
	CaptorID            uuid.UUID
	PlacerID            *uuid.UUID
	CaptureDate         time.Time
	PublishDate         *time.Time
	CloseDate           *time.Time
	CaptureCommission   valueobject.Percentage
	PlacementCommission valueobject.Percentage
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewPropertyParams carries already-validated values for a new listing.
type NewPropertyParams struct {
	AddressID           uuid.UUID
	OwnerCI             valueobject.CI
	PublicCode          string
	Title               string
	Description         string
	Price               valueobject.Money
	Surface             float64
	OperationType       OperationType
	CaptorID            uuid.UUID
	CaptureCommission   valueobject.Percentage
	PlacementCommission valueobject.Percentage
}

// NewProperty captures a listing: fresh id, available state, capture date today.
func NewProperty(p NewPropertyParams, now time.Time) (*Property, error) {
	if p.Surface <= 0 {
		return nil, domainerrors.NewBusinessRuleViolationError("La superficie debe ser mayor a 0")
	}
	if strings.TrimSpace(p.PublicCode) == "" {
		return nil, domainerrors.NewInvalidValueError("CodigoPublico", p.PublicCode, "No puede estar vacio")
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, domainerrors.NewInvalidValueError("Titulo", p.Title, "No puede estar vacio")
	}

	return &Property{
		ID:                  uuid.New(),
		AddressID:           p.AddressID,
		OwnerCI:             p.OwnerCI,
		PublicCode:          strings.TrimSpace(p.PublicCode),
		Title:               strings.TrimSpace(p.Title),
		Description:         p.Description,
		Price:               p.Price,
		Surface:             p.Surface,
		OperationType:       p.OperationType,
		State:               StateAvailable,
		CaptorID:            p.CaptorID,
		CaptureDate:         dateOf(now),
		CaptureCommission:   p.CaptureCommission,
		PlacementCommission: p.PlacementCommission,
	}, nil
}

// Publish lists an available property. The state itself does not change.
func (p *Property) Publish(now time.Time) error {
	if p.State != StateAvailable {
		return p.invalidTransition(statePublished)
	}
	day := dateOf(now)
	p.PublishDate = &day

	return nil
}

// MarkInProcess starts a negotiation on an available property.
func (p *Property) MarkInProcess() error {
	if p.State != StateAvailable {
		return p.invalidTransition(StateInProcess)
	}
	p.State = StateInProcess

	return nil
}

// Reserve holds the property for a buyer or tenant.
func (p *Property) Reserve() error {
	if p.State != StateAvailable && p.State != StateInProcess {
		return p.invalidTransition(StateReserved)
	}
	p.State = StateReserved

	return nil
}

// Close records the operation, sets the placer and moves to sold or rented.
// A nil finalPrice keeps the published price.
func (p *Property) Close(placerID uuid.UUID, finalPrice *valueobject.Money, now time.Time) error {
	if p.State.IsClosed() {
		return domainerrors.ErrAlreadyClosed
	}
	if p.State == StateInactive {
		return p.invalidTransition(stateClosedWord)
	}

	target := StateSold
	if p.OperationType == OperationRent {
		target = StateRented
	}

	day := dateOf(now)
	p.PlacerID = &placerID
	p.CloseDate = &day
	if finalPrice != nil {
		p.Price = *finalPrice
	}
	p.State = target

	return nil
}

// Deactivate soft-deletes any non-closed property.
func (p *Property) Deactivate() error {
	if p.State.IsClosed() {
		return domainerrors.ErrCannotDeactivateClosed
	}
	p.State = StateInactive

	return nil
}

// Reactivate returns an inactive property to available. It reports whether
// anything changed; other states are left untouched.
func (p *Property) Reactivate() bool {
	if p.State != StateInactive {
		return false
	}
	p.State = StateAvailable

	return true
}

// UpdatePrice corrects the published price of a non-closed property.
func (p *Property) UpdatePrice(price valueobject.Money) error {
	if p.State.IsClosed() {
		return domainerrors.ErrCannotModifyClosed
	}
	p.Price = price

	return nil
}

// CaptureCommissionAmount applies the capture percentage to finalPrice, or to
// the published price when finalPrice is nil.
func (p *Property) CaptureCommissionAmount(finalPrice *valueobject.Money) valueobject.Money {
	return p.CaptureCommission.ApplyToMoney(p.commissionBase(finalPrice))
}

// PlacementCommissionAmount is CaptureCommissionAmount for the placing agent.
func (p *Property) PlacementCommissionAmount(finalPrice *valueobject.Money) valueobject.Money {
	return p.PlacementCommission.ApplyToMoney(p.commissionBase(finalPrice))
}

func (p *Property) commissionBase(finalPrice *valueobject.Money) valueobject.Money {
	if finalPrice != nil {
		return *finalPrice
	}

	return p.Price
}

func (p *Property) IsPublished() bool { return p.PublishDate != nil }
func (p *Property) IsClosed() bool    { return p.State.IsClosed() }

// DaysOnMarket counts from the publish date to the close date, or to today
// while open. Unpublished properties report 0.
func (p *Property) DaysOnMarket(today time.Time) int {
	if p.PublishDate == nil {
		return 0
	}
	end := dateOf(today)
	if p.CloseDate != nil {
		end = *p.CloseDate
	}

	return int(end.Sub(*p.PublishDate).Hours() / 24)
}

// PropertyRevision lists the fields a partial update may change; nil fields
// are left as they are.
type PropertyRevision struct {
	OwnerCI             *valueobject.CI
	Title               *string
	Description         *string
	Price               *valueobject.Money
	Surface             *float64
	OperationType       *OperationType
	CaptureCommission   *valueobject.Percentage
	PlacementCommission *valueobject.Percentage
}

// IsEmpty reports whether the revision sets nothing.
func (r PropertyRevision) IsEmpty() bool {
	return r.OwnerCI == nil && r.Title == nil && r.Description == nil && r.Price == nil &&
		r.Surface == nil && r.OperationType == nil && r.CaptureCommission == nil && r.PlacementCommission == nil
}

// Revise applies the non-nil fields. Price changes go through UpdatePrice.
func (p *Property) Revise(r PropertyRevision) error {
	if r.Surface != nil && *r.Surface <= 0 {
		return domainerrors.NewBusinessRuleViolationError("La superficie debe ser mayor a 0")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return domainerrors.NewInvalidValueError("Titulo", *r.Title, "No puede estar vacio")
	}
	if r.Price != nil {
		if err := p.UpdatePrice(*r.Price); err != nil {
			return err
		}
	}

	if r.OwnerCI != nil {
		p.OwnerCI = *r.OwnerCI
	}
	if r.Title != nil {
		p.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Surface != nil {
		p.Surface = *r.Surface
	}
	if r.OperationType != nil {
		p.OperationType = *r.OperationType
	}
	if r.CaptureCommission != nil {
		p.CaptureCommission = *r.CaptureCommission
	}
	if r.PlacementCommission != nil {
		p.PlacementCommission = *r.PlacementCommission
	}

	return nil
}

func (p *Property) invalidTransition(to PropertyState) error {
	return domainerrors.NewInvalidStateTransitionError(PropertyEntityName, p.State.String(), to.String())
}

// dateOf truncates t to its calendar day in UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

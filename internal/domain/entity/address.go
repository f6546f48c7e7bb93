// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"

	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/domain/valueobject"

	"github.com/google/uuid"
)

// Address is the physical location a property listing refers to.
type Address struct {
	ID          uuid.UUID
	Street      string
	City        string
	Zone        string
	Coordinates *valueobject.Coordinates // Optional geolocation.
	CreatedAt   time.Time
}

// NewAddress validates that street, city and zone are present.
func NewAddress(street, city, zone string, coords *valueobject.Coordinates) (*Address, error) {
	fields := []struct{ name, value string }{
		{"Calle", street},
		{"Ciudad", city},
		{"Zona", zone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, domainerrors.NewInvalidValueError(f.name, f.value, "No puede estar vacio")
		}
	}

	return &Address{
		ID:          uuid.New(),
		Street:      strings.TrimSpace(street),
		City:        strings.TrimSpace(city),
		Zone:        strings.TrimSpace(zone),
		Coordinates: coords,
	}, nil
}

// FullAddress renders "street, zone, city".
func (a *Address) FullAddress() string {
	return a.Street + ", " + a.Zone + ", " + a.City
}

package valueobject

import (
	"fmt"

	domainerrors "brokerage/internal/domain/errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	latitude  float64
	longitude float64
}

func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	if latitude < -90 || latitude > 90 {
		return Coordinates{}, domainerrors.NewInvalidValueError("Latitud", latitude, "Debe estar entre -90 y 90")
	}
	if longitude < -180 || longitude > 180 {
		return Coordinates{}, domainerrors.NewInvalidValueError("Longitud", longitude, "Debe estar entre -180 y 180")
	}

	return Coordinates{latitude: latitude, longitude: longitude}, nil
}

func (c Coordinates) Latitude() float64  { return c.latitude }
func (c Coordinates) Longitude() float64 { return c.longitude }

// Point returns the orb representation; orb orders as [lon, lat].
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.longitude, c.latitude}
}

// DistanceTo returns the haversine distance in meters.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	return geo.DistanceHaversine(c.Point(), other.Point())
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%v, %v)", c.latitude, c.longitude)
}

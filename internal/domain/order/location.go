package order

import (
	"fmt"
	"strings"

	"github.com/fixmarket/backend/internal/domain/shared"
)

// Coordinates is a geographic point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is where the work happens: either a free-text address or a
// geocoordinate pair, never both.
type Location struct {
	address string
	coords  *Coordinates
}

// NewAddressLocation creates a location from a free-text address
func NewAddressLocation(address string) (Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Location{}, shared.NewDomainError("INVALID_LOCATION", "Address cannot be empty")
	}
	return Location{address: address}, nil
}

// NewGeoLocation creates a location from a coordinate pair
func NewGeoLocation(lat, lon float64) Location {
	return Location{coords: &Coordinates{Lat: lat, Lon: lon}}
}

// Address returns the free-text address, empty for geo locations
func (l Location) Address() string {
	return l.address
}

// Coordinates returns the coordinate pair, nil for address locations
func (l Location) Coordinates() *Coordinates {
	if l.coords == nil {
		return nil
	}
	c := *l.coords
	return &c
}

// IsGeo returns true if the location is a coordinate pair
func (l Location) IsGeo() bool {
	return l.coords != nil
}

// IsZero returns true if neither address nor coordinates are set
func (l Location) IsZero() bool {
	return l.address == "" && l.coords == nil
}

// Display returns the human-facing location text
func (l Location) Display() string {
	if l.coords != nil {
		return fmt.Sprintf("geo point %.5f, %.5f", l.coords.Lat, l.coords.Lon)
	}
	return l.address
}

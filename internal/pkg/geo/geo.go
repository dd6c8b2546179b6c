package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrLocationNotFound = errors.New("geo: location not found")

// Location is a duty-station locality. OCONUS assignments (CONUS=false)
// carry a DEROS and the extension/non-extension lifecycle.
type Location struct {
	ID          string
	Lat         float64
	Lon         float64
	CONUS       bool
	MarketShare float64 // locality labor-market share
	AddedCost   float64 // locality cost adder applied to relocations
	Opportunity float64 // likelihood of comparable outside employment
}

// Registry is the set of known locations keyed by ID.
type Registry struct {
	locations map[string]Location
}

func NewRegistry() *Registry {
	return &Registry{locations: make(map[string]Location)}
}

func (r *Registry) Add(loc Location) {
	r.locations[loc.ID] = loc
}

func (r *Registry) Get(id string) (Location, error) {
	loc, ok := r.locations[id]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrLocationNotFound, id)
	}
	return loc, nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.locations[id]
	return ok
}

func (r *Registry) Len() int { return len(r.locations) }

// IsOCONUS reports whether the location is outside the continental US.
// Unknown locations are treated as CONUS so a bad scenario degrades to
// the simpler lifecycle instead of erroring mid-tick.
func (r *Registry) IsOCONUS(id string) bool {
	loc, ok := r.locations[id]
	return ok && !loc.CONUS
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// registered locations.
func (r *Registry) Distance(fromID, toID string) (float64, error) {
	from, err := r.Get(fromID)
	if err != nil {
		return 0, err
	}
	to, err := r.Get(toID)
	if err != nil {
		return 0, err
	}
	return haversine(from.Lat, from.Lon, to.Lat, to.Lon), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

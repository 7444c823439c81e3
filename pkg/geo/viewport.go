package geo

import "math"

const (
	// MinSearchRadiusMeters and MaxSearchRadiusMeters bound the radius derived
	// from a viewport.
	MinSearchRadiusMeters = 2000.0
	MaxSearchRadiusMeters = 50000.0

	// DefaultSearchRadiusMeters is used when no viewport bounds are known.
	DefaultSearchRadiusMeters = 50000.0
)

// Bounds is the visible geographic rectangle of a map.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b Bounds) NorthEast() Point { return Point{Lat: b.North, Lng: b.East} }
func (b Bounds) SouthWest() Point { return Point{Lat: b.South, Lng: b.West} }

// Valid reports whether all four edges are finite.
func (b Bounds) Valid() bool {
	return b.NorthEast().Valid() && b.SouthWest().Valid()
}

// Center is the midpoint of the rectangle. Antimeridian-spanning bounds are
// not handled.
func (b Bounds) Center() Point {
	return Point{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

// BoundsAround returns a square of sideKm kilometres centred on center.
func BoundsAround(center Point, sideKm float64) Bounds {
	half := sideKm / 2
	latDelta := KmToLatitudeDelta(half)
	lngDelta := KmToLongitudeDelta(half, center.Lat)
	return Bounds{
		North: center.Lat + latDelta,
		South: center.Lat - latDelta,
		East:  center.Lng + lngDelta,
		West:  center.Lng - lngDelta,
	}
}

// SearchRadius derives a live search radius from the visible bounds. It takes
// the larger of the distances from center to the north edge (same longitude)
// and to the east edge (same latitude), rounds it and clamps it to
// [MinSearchRadiusMeters, MaxSearchRadiusMeters]. A nil or invalid bounds
// yields DefaultSearchRadiusMeters.
func SearchRadius(bounds *Bounds, center Point) float64 {
	if bounds == nil || !bounds.Valid() || !center.Valid() {
		return DefaultSearchRadiusMeters
	}

	north := Point{Lat: bounds.North, Lng: center.Lng}
	east := Point{Lat: center.Lat, Lng: bounds.East}

	radius := math.Max(Distance(center, north), Distance(center, east))
	return ClampRadius(math.Round(radius))
}

// ClampRadius clamps meters to the allowed search radius range.
func ClampRadius(meters float64) float64 {
	return min(MaxSearchRadiusMeters, max(MinSearchRadiusMeters, meters))
}

// Package geo contains the small amount of geodesy the finder needs:
// great-circle distances, kilometre to degree conversions and the
// viewport helpers built on top of them.
package geo

import "math"

// EarthRadiusMeters is the mean earth radius used for haversine distances.
const EarthRadiusMeters = 6371000.0

// kmPerDegreeLat is the length of one degree of latitude.
const kmPerDegreeLat = 111.32

// minCosLatitude keeps longitude deltas finite near the poles.
const minCosLatitude = 0.1

type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// KmToLatitudeDelta converts a north-south distance into degrees of latitude.
func KmToLatitudeDelta(km float64) float64 {
	return km / kmPerDegreeLat
}

// KmToLongitudeDelta converts an east-west distance at the given latitude into
// degrees of longitude.
func KmToLongitudeDelta(km, latitude float64) float64 {
	cosLat := math.Max(math.Abs(math.Cos(toRadians(latitude))), minCosLatitude)
	return km / (kmPerDegreeLat * cosLat)
}

// Offset moves p by the given number of meters north and east. It is the
// inverse of the degree conversions above and is accurate for short distances.
func Offset(p Point, northMeters, eastMeters float64) Point {
	return Point{
		Lat: p.Lat + KmToLatitudeDelta(northMeters/1000),
		Lng: p.Lng + KmToLongitudeDelta(eastMeters/1000, p.Lat),
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Package geolocate provides the user's position. Providers always resolve:
// a refusal is reported as ok=false, never as an error.
package geolocate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"sauna/internal/logging"
	"sauna/pkg/geo"
	"sauna/pkg/location"
)

// DefaultTimeout bounds how long a fix may take.
const DefaultTimeout = 12 * time.Second

type Provider interface {
	Locate(ctx context.Context) (geo.Point, bool)
}

// None never yields a position.
type None struct{}

func (None) Locate(context.Context) (geo.Point, bool) { return geo.Point{}, false }

// Static yields a fixed position.
type Static struct {
	Point geo.Point
}

func (s Static) Locate(context.Context) (geo.Point, bool) {
	return s.Point, s.Point.Valid()
}

// Geocoder is implemented by *location.Client.
type Geocoder interface {
	Geocode(ctx context.Context, query, language string) (*location.Location, error)
}

// Geocoded resolves a place name, e.g. the one passed on the command line.
type Geocoded struct {
	Geocoder Geocoder
	Query    string
	Language string
	Timeout  time.Duration
	Logger   *zap.Logger
}

func (g Geocoded) Locate(ctx context.Context) (geo.Point, bool) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	loc, err := g.Geocoder.Geocode(ctx, g.Query, g.Language)
	if err != nil {
		logging.OrNop(g.Logger).Warn("geolocation refused",
			zap.String("query", g.Query),
			zap.Error(err),
		)
		return geo.Point{}, false
	}
	return loc.Point, loc.Point.Valid()
}

// ParsePoint reads "lat,lng".
func ParsePoint(s string) (geo.Point, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("invalid point %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	p := geo.Point{Lat: lat, Lng: lng}
	if !p.Valid() || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return geo.Point{}, fmt.Errorf("point %q out of range", s)
	}
	return p, nil
}

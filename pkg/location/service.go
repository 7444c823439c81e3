// Package location resolves free-text place names to coordinates through the
// Nominatim search API.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sauna/pkg/geo"
)

const DefaultEndpoint = "https://nominatim.openstreetmap.org"

// ErrNoResults is returned when a query matches nothing.
var ErrNoResults = errors.New("location: no results")

// Location holds the resolved place.
type Location struct {
	Name        string
	DisplayName string
	Point       geo.Point
	City        string
	Country     string
	Type        string
	OsmID       int64
	BoundingBox *geo.Bounds
}

// NominatimResponse is shaped for the API response
type NominatimResponse []struct {
	PlaceID     int64   `json:"place_id"`
	OsmType     string  `json:"osm_type"`
	OsmID       int64   `json:"osm_id"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
	BoundingBox []string `json:"boundingbox"`
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

func NewClient(endpoint, userAgent string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = "finnbadstu-geocoder/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		userAgent:  userAgent,
	}
}

// Geocode looks up a place name and returns the best match.
func (c *Client) Geocode(ctx context.Context, query, language string) (*Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	if language != "" {
		params.Set("accept-language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var results NominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	first := results[0]
	lat, errLat := strconv.ParseFloat(first.Lat, 64)
	lon, errLon := strconv.ParseFloat(first.Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("invalid coordinates %q,%q for %q", first.Lat, first.Lon, query)
	}

	city := first.Address.City
	if city == "" {
		city = first.Address.Town
	}
	if city == "" {
		city = first.Address.Village
	}

	return &Location{
		Name:        query,
		DisplayName: first.DisplayName,
		Point:       geo.Point{Lat: lat, Lng: lon},
		City:        city,
		Country:     first.Address.Country,
		Type:        first.Type,
		OsmID:       first.OsmID,
		BoundingBox: parseBoundingBox(first.BoundingBox),
	}, nil
}

// parseBoundingBox reads Nominatim's [south, north, west, east] strings.
func parseBoundingBox(raw []string) *geo.Bounds {
	if len(raw) != 4 {
		return nil
	}
	var v [4]float64
	for i, s := range raw {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	return &geo.Bounds{South: v[0], North: v[1], West: v[2], East: v[3]}
}

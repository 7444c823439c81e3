package places

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// SearchTextRequest is the body of a places:searchText call.
type SearchTextRequest struct {
	TextQuery      string        `json:"textQuery"`
	LanguageCode   string        `json:"languageCode,omitempty"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	LocationBias   *LocationBias `json:"locationBias,omitempty"`
}

// LocationBias biases results towards a circle.
type LocationBias struct {
	Circle Circle `json:"circle"`
}

type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// SearchTextResponse is the top-level response of places:searchText.
type SearchTextResponse struct {
	Places []Place `json:"places"`
}

// Place is one result of a text search. Only the fields requested through the
// field mask are populated.
type Place struct {
	ID               string        `json:"id"`
	DisplayName      LocalizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress,omitempty"`
	Location         LatLng        `json:"location"`
	GoogleMapsURI    string        `json:"googleMapsUri,omitempty"`
	WebsiteURI       string        `json:"websiteUri,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingCount  *int          `json:"userRatingCount,omitempty"`
}

// LatLng is a location whose coordinates may be plain numbers or accessors.
type LatLng struct {
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// NewLatLng builds a LatLng from plain values.
func NewLatLng(lat, lng float64) LatLng {
	return LatLng{Latitude: Value(lat), Longitude: Value(lng)}
}

// Coordinate is either a raw number or a zero-argument accessor returning one.
// The zero value is unset.
type Coordinate struct {
	value    float64
	accessor func() float64
	set      bool
}

// Value wraps a plain number.
func Value(v float64) Coordinate {
	return Coordinate{value: v, set: true}
}

// Accessor wraps a function that yields the number on demand.
func Accessor(fn func() float64) Coordinate {
	return Coordinate{accessor: fn, set: fn != nil}
}

// IsAccessor reports whether the coordinate is backed by a function.
func (c Coordinate) IsAccessor() bool {
	return c.accessor != nil
}

// Resolve returns the numeric value and whether it is a finite number.
func (c Coordinate) Resolve() (float64, bool) {
	if !c.set {
		return 0, false
	}
	v := c.value
	if c.accessor != nil {
		v = c.accessor()
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	v, ok := c.Resolve()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Coordinate{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	*c = Value(v)
	return nil
}

// LocalizedText is a display string that arrives either as plain text or as a
// {"text", "languageCode"} wrapper.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = LocalizedText{Text: plain}
		return nil
	}
	type wrapper LocalizedText
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("localized text: %w", err)
	}
	*t = LocalizedText(w)
	return nil
}

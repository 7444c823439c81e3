package models

import (
	"fmt"
	"math"
	"strings"

	"sauna/pkg/geo"
)

// Record is one raw record of unknown shape as decoded from JSON or YAML.
type Record = map[string]any

// Sauna is the canonical record produced by normalization. Values are treated
// as immutable: merges build a new Sauna instead of modifying their inputs.
type Sauna struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        geo.Point `json:"location"`
	Address         string    `json:"address"`
	MapsURI         string    `json:"mapsUri"`
	WebsiteURI      string    `json:"websiteUri"`
	WebpageURLNo    string    `json:"webpageUrlNo"`
	WebpageURLEn    string    `json:"webpageUrlEn"`
	Rating          *float64  `json:"rating,omitempty"`
	UserRatingCount *int      `json:"userRatingCount,omitempty"`
}

// HasRating reports whether the sauna carries a usable rating.
func (s Sauna) HasRating() bool {
	return s.Rating != nil && !math.IsNaN(*s.Rating) && !math.IsInf(*s.Rating, 0)
}

// HasRatingCount reports whether the sauna carries a review count.
func (s Sauna) HasRatingCount() bool {
	return s.UserRatingCount != nil
}

// LocalizedWebpageURL picks the informational page for the given locale.
// Norwegian prefers the Norwegian page, every other locale the English one.
func (s Sauna) LocalizedWebpageURL(locale string) string {
	if locale == "nb" {
		return firstNonEmpty(s.WebpageURLNo, s.WebpageURLEn)
	}
	return firstNonEmpty(s.WebpageURLEn, s.WebpageURLNo)
}

// RatingLabel renders the rating as "4.5 (120)", or "" without a rating.
func (s Sauna) RatingLabel() string {
	if !s.HasRating() {
		return ""
	}
	label := fmt.Sprintf("%.1f", *s.Rating)
	if s.HasRatingCount() {
		label += fmt.Sprintf(" (%d)", *s.UserRatingCount)
	}
	return label
}

// FormatRatingStars renders a 0-5 rating as filled and hollow stars.
func FormatRatingStars(rating float64) string {
	filled := int(math.Round(min(5, max(0, rating))))
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

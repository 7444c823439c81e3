package normalize

import (
	"sauna/internal/models"
	"sauna/pkg/places"
)

// Place adapts a live search result to the raw record shape and normalizes it.
// Coordinates exposed as accessors are resolved here, so only plain numbers
// reach the canonical path. A place without a maps link keeps an empty
// MapsURI so a merge never replaces a curated link with a generated one.
func (n *Normalizer) Place(p places.Place) (models.Sauna, bool) {
	lat, ok := p.Location.Latitude.Resolve()
	if !ok {
		return models.Sauna{}, false
	}
	lng, ok := p.Location.Longitude.Resolve()
	if !ok {
		return models.Sauna{}, false
	}

	rec := models.Record{
		"id":               p.ID,
		"name":             p.DisplayName.Text,
		"formattedAddress": p.FormattedAddress,
		"googleMapsUri":    p.GoogleMapsURI,
		"websiteUri":       p.WebsiteURI,
		"location":         map[string]any{"lat": lat, "lng": lng},
	}
	if p.Rating != nil {
		rec["rating"] = *p.Rating
	}
	if p.UserRatingCount != nil {
		rec["userRatingCount"] = *p.UserRatingCount
	}
	return n.normalize(rec, false)
}

// Places normalizes a batch of live results, dropping the unusable ones.
func (n *Normalizer) Places(ps []places.Place) []models.Sauna {
	out := make([]models.Sauna, 0, len(ps))
	for _, p := range ps {
		if s, ok := n.Place(p); ok {
			out = append(out, s)
		}
	}
	return out
}

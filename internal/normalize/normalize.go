package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"sauna/internal/models"
	"sauna/pkg/geo"
)

const mapsSearchURL = "https://www.google.com/maps/search/"

// Normalizer converts raw records into canonical saunas. The zero value is not
// usable; build one with New.
type Normalizer struct {
	aliases     Aliases
	unknownName string
}

// New returns a Normalizer using the given alias table. unknownName is the
// placeholder used for records without a name.
func New(aliases Aliases, unknownName string) *Normalizer {
	return &Normalizer{aliases: aliases, unknownName: unknownName}
}

// Normalize builds a Sauna from rec. It returns false when no coordinate pair
// resolves to finite numbers or when no identifier is present. A record
// without a maps link gets a search-by-coordinates link.
func (n *Normalizer) Normalize(rec models.Record) (models.Sauna, bool) {
	return n.normalize(rec, true)
}

func (n *Normalizer) normalize(rec models.Record, defaultMaps bool) (models.Sauna, bool) {
	if rec == nil {
		return models.Sauna{}, false
	}

	loc, ok := n.location(rec)
	if !ok {
		return models.Sauna{}, false
	}

	id := firstString(rec, n.aliases.ID)
	if id == "" {
		return models.Sauna{}, false
	}

	name := firstString(rec, n.aliases.Name)
	if name == "" {
		name = n.unknownName
	}

	mapsURI := firstString(rec, n.aliases.MapsURI)
	if mapsURI == "" && defaultMaps {
		mapsURI = MapsSearchURL(loc)
	}

	return models.Sauna{
		ID:              id,
		Name:            name,
		Location:        loc,
		Address:         firstString(rec, n.aliases.Address),
		MapsURI:         mapsURI,
		WebsiteURI:      firstString(rec, n.aliases.WebsiteURI),
		WebpageURLNo:    firstString(rec, n.aliases.WebpageURLNo),
		WebpageURLEn:    firstString(rec, n.aliases.WebpageURLEn),
		Rating:          rating(rec, n.aliases.Rating),
		UserRatingCount: ratingCount(rec, n.aliases.RatingCount),
	}, true
}

// NormalizeAll normalizes every record and silently drops rejected ones.
func (n *Normalizer) NormalizeAll(recs []models.Record) []models.Sauna {
	out := make([]models.Sauna, 0, len(recs))
	for _, rec := range recs {
		if s, ok := n.Normalize(rec); ok {
			out = append(out, s)
		}
	}
	return out
}

func (n *Normalizer) location(rec models.Record) (geo.Point, bool) {
	for _, pair := range n.aliases.Coordinates {
		lat, ok := toNumber(lookup(rec, pair.Lat))
		if !ok {
			continue
		}
		lng, ok := toNumber(lookup(rec, pair.Lng))
		if !ok {
			continue
		}
		return geo.Point{Lat: lat, Lng: lng}, true
	}
	return geo.Point{}, false
}

// MapsSearchURL is the "search by coordinates" link used when a record has no
// explicit maps link.
func MapsSearchURL(p geo.Point) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", formatFloat(p.Lat)+","+formatFloat(p.Lng))
	return mapsSearchURL + "?" + q.Encode()
}

func rating(rec models.Record, keys []string) *float64 {
	for _, key := range keys {
		if v, ok := toNumber(rec[key]); ok {
			r := min(5, max(0, v))
			return &r
		}
	}
	return nil
}

func ratingCount(rec models.Record, keys []string) *int {
	for _, key := range keys {
		v, ok := toNumber(rec[key])
		if !ok || v < 0 {
			continue
		}
		c := int(math.Round(v))
		return &c
	}
	return nil
}

func lookup(rec models.Record, path Path) any {
	var cur any = rec
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	}
	return nil, false
}

func firstString(rec models.Record, keys []string) string {
	for _, key := range keys {
		if s := toString(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return ""
}

// toNumber accepts JSON/YAML numbers and numeric strings. Empty strings, booleans
// and non-finite values are rejected.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

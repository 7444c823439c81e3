// Package normalize turns raw records from the manual dataset and the live
// place search into canonical saunas.
package normalize

// Path is a key path into a raw record, e.g. {"coordinates", "lat"}.
type Path []string

// CoordinatePair names where a latitude and its longitude live.
type CoordinatePair struct {
	Lat Path
	Lng Path
}

// Aliases lists, per canonical field, the raw keys tried in order. The first
// candidate that yields a usable value wins.
type Aliases struct {
	Coordinates  []CoordinatePair
	ID           []string
	Name         []string
	Address      []string
	MapsURI      []string
	WebsiteURI   []string
	WebpageURLNo []string
	WebpageURLEn []string
	Rating       []string
	RatingCount  []string
}

// DefaultAliases covers every historical data-entry convention seen in the
// manual dataset as well as the live place shape.
var DefaultAliases = Aliases{
	Coordinates: []CoordinatePair{
		{Lat: Path{"lat"}, Lng: Path{"lng"}},
		{Lat: Path{"latitude"}, Lng: Path{"longitude"}},
		{Lat: Path{"coordinates", "lat"}, Lng: Path{"coordinates", "lng"}},
		{Lat: Path{"coordinates", "latitude"}, Lng: Path{"coordinates", "longitude"}},
		{Lat: Path{"location", "lat"}, Lng: Path{"location", "lng"}},
		{Lat: Path{"location", "latitude"}, Lng: Path{"location", "longitude"}},
	},
	ID:      []string{"uuid", "UUID", "id", "Id", "placeId"},
	Name:    []string{"name", "Name", "displayName"},
	Address: []string{"address", "Address", "formattedAddress"},
	MapsURI: []string{"mapsUri", "googleMapsURI", "googleMapsUri"},
	WebsiteURI: []string{
		"websiteUri",
		"websiteURI",
		"websiteURL",
		"websiteUrl",
	},
	WebpageURLNo: []string{
		"webpageUrlNo",
		"webpageUrlNb",
		"webpageUrlNorwegian",
		"moreInfoUrlNo",
		"moreInfoUrlNb",
		"moreInfoUrlNorwegian",
		"More info URL (norwegian)",
	},
	WebpageURLEn: []string{
		"webpageUrlEn",
		"webpageUrlEnglish",
		"moreInfoUrlEn",
		"moreInfoUrlEnglish",
		"More info URL (english)",
	},
	Rating:      []string{"rating", "Rating"},
	RatingCount: []string{"userRatingCount", "UserRatingCount", "user_ratings_total"},
}

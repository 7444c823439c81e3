// Package i18n holds the user-facing labels in English and Norwegian Bokmål.
package i18n

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

const (
	English   = "en"
	Norwegian = "nb"
)

const (
	KeyAddressUnavailable = "app.label.addressUnavailable"
	KeyWebsite            = "app.label.website"
	KeyOpenMaps           = "app.label.openMaps"
	KeyUnknownSauna       = "app.label.unknownSauna"
	KeySearchArea         = "app.searchArea.button"
	KeySearching          = "app.searchArea.searching"
	KeyLocationButton     = "app.location.button"
	KeyLocating           = "app.location.locating"
	KeyNearbySummary      = "app.nearby.summary"
)

var translations = map[string]map[string]string{
	English: {
		KeyAddressUnavailable: "Address unavailable",
		KeyWebsite:            "Website",
		KeyOpenMaps:           "Open in Google Maps",
		KeyUnknownSauna:       "Unknown sauna",
		KeySearchArea:         "Search this area",
		KeySearching:          "Searching...",
		KeyLocationButton:     "Go to my location",
		KeyLocating:           "Locating...",
		KeyNearbySummary:      "{count} saunas near {place}",
	},
	Norwegian: {
		KeyAddressUnavailable: "Adresse ikke tilgjengelig",
		KeyWebsite:            "Nettside",
		KeyOpenMaps:           "Åpne i Google Maps",
		KeyUnknownSauna:       "Ukjent badstu",
		KeySearchArea:         "Søk i dette området",
		KeySearching:          "Søker...",
		KeyLocationButton:     "Gå til min posisjon",
		KeyLocating:           "Finner posisjon...",
		KeyNearbySummary:      "{count} badstuer nær {place}",
	},
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

var norwegianBases = map[string]bool{"nb": true, "nn": true, "no": true}

// DetectLocale returns Norwegian when any of the given language tags is a
// Norwegian variant and English otherwise. Tags may come from an
// Accept-Language list or from POSIX variables such as "nb_NO.UTF-8".
func DetectLocale(tags ...string) string {
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if i := strings.IndexAny(tag, ".@"); i >= 0 {
			tag = tag[:i]
		}
		tag = strings.ReplaceAll(tag, "_", "-")
		if tag == "" {
			continue
		}
		parsed, err := language.Parse(tag)
		if err != nil {
			continue
		}
		base, _ := parsed.Base()
		if norwegianBases[base.String()] {
			return Norwegian
		}
	}
	return English
}

// T looks up key for locale, falling back to English and then to the key
// itself. {name} placeholders are filled from vars; unknown ones become empty.
func T(locale, key string, vars map[string]string) string {
	dict, ok := translations[locale]
	if !ok {
		dict = translations[English]
	}
	tmpl, ok := dict[key]
	if !ok {
		tmpl, ok = translations[English][key]
		if !ok {
			tmpl = key
		}
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
}

// Labels binds a locale for repeated lookups.
type Labels struct {
	Locale string
}

func (l Labels) T(key string) string {
	return T(l.Locale, key, nil)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sauna/internal/geolocate"
	"sauna/internal/i18n"
	"sauna/internal/live"
	"sauna/internal/models"
	"sauna/internal/session"
	"sauna/pkg/geo"
	"sauna/pkg/location"
	"sauna/pkg/places"
)

type nearbyOptions struct {
	at     string
	near   string
	bounds string
	zoom   int
	locale string
	output string
}

func newNearbyCmd(a *app) *cobra.Command {
	opts := &nearbyOptions{}
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List saunas around your position or a searched area",
		Example: `  finder nearby --near "Grünerløkka, Oslo"
  finder nearby --at 59.9139,10.7522 --bounds 60.0,59.8,10.9,10.6
  finder nearby --locale nb --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNearby(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.at, "at", "", "your position as lat,lng")
	cmd.Flags().StringVar(&opts.near, "near", "", "place name to geocode as your position")
	cmd.Flags().StringVar(&opts.bounds, "bounds", "", "search this area: north,south,east,west")
	cmd.Flags().IntVar(&opts.zoom, "zoom", 0, "map zoom of the searched area")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "en or nb (default: from LANG)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "text or json")
	cmd.MarkFlagsMutuallyExclusive("at", "near")
	return cmd
}

// environmentLocale returns the POSIX message locale: the first non-empty of
// LC_ALL, LC_MESSAGES and LANG.
func environmentLocale(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func runNearby(cmd *cobra.Command, a *app, opts *nearbyOptions) error {
	ctx := cmd.Context()
	locale := opts.locale
	if locale == "" {
		locale = i18n.DetectLocale(environmentLocale(os.Getenv))
	} else {
		locale = i18n.DetectLocale(locale)
	}

	locator, err := a.locator(opts)
	if err != nil {
		return err
	}

	src, closeSource, err := a.cfg.OpenManualSource(ctx, a.logger)
	if err != nil {
		// the finder still works from live results alone
		a.logger.Warn("manual source unavailable", zap.String("source", a.cfg.ManualSource), zap.Error(err))
		src, closeSource = nil, func() {}
	}
	defer closeSource()

	var fetcher session.LiveFetcher
	if a.cfg.PlacesAPIKey != "" {
		client := places.NewClient(a.cfg.PlacesAPIKey, places.WithEndpoint(a.cfg.PlacesEndpoint))
		fetcher = live.NewSearcher(client, live.Options{Language: a.cfg.Language}, a.logger)
	} else {
		a.logger.Warn("SAUNA_PLACES_API_KEY not set, showing manual saunas only")
	}

	h := session.NewHandler(src, fetcher, locator, a.logger)
	st, visible := h.Bootstrap(ctx, session.NewState(locale))

	if opts.bounds != "" {
		b, err := parseBounds(opts.bounds)
		if err != nil {
			return err
		}
		view := session.Viewport{Center: b.Center(), Bounds: &b}
		if cmd.Flags().Changed("zoom") {
			view.Zoom = &opts.zoom
		}
		st, visible, err = h.SearchArea(ctx, st, view)
		if err != nil {
			return err
		}
	}

	if opts.output == "json" {
		return writeJSON(cmd.OutOrStdout(), visible)
	}
	return writeText(cmd.OutOrStdout(), st, visible, opts.near)
}

func (a *app) locator(opts *nearbyOptions) (geolocate.Provider, error) {
	switch {
	case opts.at != "":
		p, err := geolocate.ParsePoint(opts.at)
		if err != nil {
			return nil, err
		}
		return geolocate.Static{Point: p}, nil
	case opts.near != "":
		return geolocate.Geocoded{
			Geocoder: location.NewClient(a.cfg.NominatimEndpoint, a.cfg.UserAgent),
			Query:    opts.near,
			Language: a.cfg.Language,
			Logger:   a.logger,
		}, nil
	}
	return geolocate.None{}, nil
}

// parseBounds reads "north,south,east,west".
func parseBounds(s string) (geo.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Bounds{}, fmt.Errorf("invalid bounds %q: want north,south,east,west", s)
	}
	var edges [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		edges[i] = v
	}
	b := geo.Bounds{North: edges[0], South: edges[1], East: edges[2], West: edges[3]}
	if !b.Valid() || b.North < b.South {
		return geo.Bounds{}, fmt.Errorf("invalid bounds %q", s)
	}
	return b, nil
}

func writeJSON(w io.Writer, saunas []models.Sauna) error {
	if saunas == nil {
		saunas = []models.Sauna{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(saunas)
}

func writeText(w io.Writer, st session.State, saunas []models.Sauna, place string) error {
	labels := i18n.Labels{Locale: st.Locale}
	if place == "" {
		place = fmt.Sprintf("%.4f,%.4f", st.ActiveCenter.Lat, st.ActiveCenter.Lng)
	}
	fmt.Fprintln(w, i18n.T(st.Locale, i18n.KeyNearbySummary, map[string]string{
		"count": strconv.Itoa(len(saunas)),
		"place": place,
	}))

	for _, s := range saunas {
		km := geo.Distance(st.ActiveCenter, s.Location) / 1000
		fmt.Fprintf(w, "\n%s  (%.1f km)\n", s.Name, km)
		if s.HasRating() {
			fmt.Fprintf(w, "  %s %s\n", models.FormatRatingStars(*s.Rating), s.RatingLabel())
		}
		address := s.Address
		if address == "" {
			address = labels.T(i18n.KeyAddressUnavailable)
		}
		fmt.Fprintf(w, "  %s\n", address)
		if s.WebsiteURI != "" {
			fmt.Fprintf(w, "  %s: %s\n", labels.T(i18n.KeyWebsite), s.WebsiteURI)
		}
		if u := s.LocalizedWebpageURL(st.Locale); u != "" {
			fmt.Fprintf(w, "  %s\n", u)
		}
		fmt.Fprintf(w, "  %s: %s\n", labels.T(i18n.KeyOpenMaps), s.MapsURI)
	}
	return nil
}

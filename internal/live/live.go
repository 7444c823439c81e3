// Package live fetches saunas from the places text search around a point.
package live

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sauna/internal/fanout"
	"sauna/internal/logging"
	"sauna/pkg/geo"
	"sauna/pkg/places"
)

// DefaultQueries are the keywords searched on every trigger.
var DefaultQueries = []string{"sauna", "badstu"}

// DefaultResultLimit is the result cap per query.
const DefaultResultLimit = 20

// PlaceSearcher is implemented by *places.Client.
type PlaceSearcher interface {
	SearchText(ctx context.Context, req places.SearchTextRequest) ([]places.Place, error)
}

type Options struct {
	Queries     []string
	ResultLimit int
	Language    string
}

type Searcher struct {
	client PlaceSearcher
	opts   Options
	logger *zap.Logger
}

func NewSearcher(client PlaceSearcher, opts Options, logger *zap.Logger) *Searcher {
	if len(opts.Queries) == 0 {
		opts.Queries = DefaultQueries
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}
	return &Searcher{client: client, opts: opts, logger: logging.OrNop(logger)}
}

// batch holds one result slot per query so concurrent queries never share
// mutable state.
type batch struct {
	results [][]places.Place
}

// Fetch issues every query concurrently with a location bias around center
// and returns the places of the queries that succeeded, in query order.
// Failed queries are logged and skipped.
func (s *Searcher) Fetch(ctx context.Context, center geo.Point, radiusMeters float64) []places.Place {
	b := &batch{results: make([][]places.Place, len(s.opts.Queries))}

	steps := make([]fanout.Step[batch], len(s.opts.Queries))
	for i, query := range s.opts.Queries {
		steps[i] = func(ctx context.Context, b *batch) error {
			found, err := s.client.SearchText(ctx, places.SearchTextRequest{
				TextQuery:      query,
				LanguageCode:   s.opts.Language,
				MaxResultCount: s.opts.ResultLimit,
				LocationBias: &places.LocationBias{Circle: places.Circle{
					Center: places.NewLatLng(center.Lat, center.Lng),
					Radius: radiusMeters,
				}},
			})
			if err != nil {
				return fmt.Errorf("live query %q: %w", query, err)
			}
			b.results[i] = found
			return nil
		}
	}

	_ = fanout.NewPipeline(s.logger, fanout.NewStage("live-search", steps...)).Run(ctx, b)

	var all []places.Place
	for _, r := range b.results {
		all = append(all, r...)
	}
	s.logger.Debug("live search settled",
		zap.Int("queries", len(s.opts.Queries)),
		zap.Int("places", len(all)),
		zap.Float64("radius", radiusMeters),
	)
	return all
}

package session

import (
	"context"

	"go.uber.org/zap"

	"sauna/internal/geolocate"
	"sauna/internal/i18n"
	"sauna/internal/logging"
	"sauna/internal/manual"
	"sauna/internal/models"
	"sauna/internal/normalize"
	"sauna/internal/reconcile"
	"sauna/pkg/geo"
	"sauna/pkg/places"
)

// LiveFetcher is implemented by *live.Searcher.
type LiveFetcher interface {
	Fetch(ctx context.Context, center geo.Point, radiusMeters float64) []places.Place
}

// Handler performs the I/O behind each interaction: loading the manual
// dataset, locating the user and running live searches.
type Handler struct {
	manual  manual.Source
	live    LiveFetcher
	locator geolocate.Provider
	logger  *zap.Logger
}

func NewHandler(src manual.Source, live LiveFetcher, locator geolocate.Provider, logger *zap.Logger) *Handler {
	if locator == nil {
		locator = geolocate.None{}
	}
	return &Handler{manual: src, live: live, locator: locator, logger: logging.OrNop(logger)}
}

func (h *Handler) reconciler(locale string) *reconcile.Reconciler {
	return reconcile.New(normalize.New(normalize.DefaultAliases, i18n.T(locale, i18n.KeyUnknownSauna, nil)))
}

// LoadManual returns the normalized manual set. Failures yield an empty set.
func (h *Handler) LoadManual(ctx context.Context, locale string) []models.Sauna {
	return h.reconciler(locale).Manual(manual.Load(ctx, h.manual, h.logger))
}

// Locate asks the provider for the user's position.
func (h *Handler) Locate(ctx context.Context) (geo.Point, bool) {
	return h.locator.Locate(ctx)
}

// Position returns the cached fix of st, or asks the provider for one.
func (h *Handler) Position(ctx context.Context, st State) (geo.Point, bool) {
	if st.UserLocation != nil {
		return *st.UserLocation, true
	}
	return h.Locate(ctx)
}

// Fetch runs the live search for t and normalizes the result.
func (h *Handler) Fetch(ctx context.Context, locale string, t Ticket) []models.Sauna {
	if h.live == nil {
		return nil
	}
	return h.reconciler(locale).Live(h.live.Fetch(ctx, t.Center, t.RadiusMeters))
}

// Bootstrap loads the manual dataset once, centers on the user's position
// when available and runs the initial live search.
func (h *Handler) Bootstrap(ctx context.Context, st State) (State, []models.Sauna) {
	if !st.ManualLoaded {
		st = st.WithManual(h.LoadManual(ctx, st.Locale))
	}
	if p, ok := h.Position(ctx, st); ok {
		st = st.WithUserLocation(p)
	}

	bounds := st.ViewportBounds()
	st, t, _ := st.BeginSearch(KindInitial, st.ViewportCenter, &bounds)
	st, err := st.ApplyLive(t, h.Fetch(ctx, st.Locale, t), Viewport{Center: t.Center})
	if err != nil {
		h.logger.Warn("initial search dropped", zap.Error(err))
	}
	return st, st.Visible()
}

// SearchArea runs a live search for the reported viewport.
func (h *Handler) SearchArea(ctx context.Context, st State, view Viewport) (State, []models.Sauna, error) {
	st, t, err := st.BeginSearch(KindArea, view.Center, view.Bounds)
	if err != nil {
		return st, st.Visible(), err
	}
	st, err = st.ApplyLive(t, h.Fetch(ctx, st.Locale, t), view)
	return st, st.Visible(), err
}

// GoToMyLocation recenters on the user's position and searches around it.
// When no position is available the state is returned unchanged apart from
// the released busy flag.
func (h *Handler) GoToMyLocation(ctx context.Context, st State) (State, []models.Sauna, error) {
	st, t, err := st.BeginLocate()
	if err != nil {
		return st, st.Visible(), err
	}
	p, ok := h.Position(ctx, st)
	if !ok {
		st = st.Finish(t)
		return st, st.Visible(), nil
	}
	st, t, err = st.Located(t, p)
	if err != nil {
		return st, st.Visible(), err
	}
	st, err = st.ApplyLive(t, h.Fetch(ctx, st.Locale, t), Viewport{Center: p})
	return st, st.Visible(), err
}

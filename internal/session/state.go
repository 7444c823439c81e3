// Package session holds the state of one map session and the interaction
// handlers that move it forward. State is a plain value: every handler takes
// the current state and returns the next one.
package session

import (
	"errors"

	"sauna/internal/i18n"
	"sauna/internal/models"
	"sauna/internal/reconcile"
	"sauna/pkg/geo"
)

var (
	// ErrBusy is returned when a search of the same kind is still running.
	ErrBusy = errors.New("search already in progress")
	// ErrStale is returned when a result arrives for a superseded search.
	ErrStale = errors.New("search result is stale")
)

// DefaultCenter is used until the user's position is known.
var DefaultCenter = geo.Point{Lat: 59.9139, Lng: 10.7522}

const (
	// DefaultViewportKm is the initial viewport side without a user position.
	DefaultViewportKm = 100.0
	// LocatedViewportKm is the viewport side around a known user position.
	LocatedViewportKm = 10.0
	// MoveThresholdMeters is how far the map must move before an area search
	// is offered again.
	MoveThresholdMeters = 150.0
)

type Kind string

const (
	KindInitial  Kind = "initial"
	KindArea     Kind = "area"
	KindLocation Kind = "location"
)

// Viewport is what the map reports: its center, and optionally its bounds and
// zoom level.
type Viewport struct {
	Center geo.Point   `json:"center"`
	Bounds *geo.Bounds `json:"bounds,omitempty"`
	Zoom   *int        `json:"zoom,omitempty"`
}

// Ticket identifies one in-flight live search.
type Ticket struct {
	Kind         Kind
	Generation   uint64
	Center       geo.Point
	RadiusMeters float64
}

type State struct {
	Locale string

	// ActiveCenter is the reference point for proximity filtering.
	ActiveCenter   geo.Point
	ViewportCenter geo.Point
	ViewportKm     float64
	UserLocation   *geo.Point

	ManualLoaded bool
	Manual       []models.Sauna
	Live         []models.Sauna

	// Generation increases with every started search. Only the result of the
	// latest generation is applied.
	Generation         uint64
	LastSearch         *Viewport
	ReadyForAreaSearch bool

	AreaBusy     bool
	LocationBusy bool
}

func NewState(locale string) State {
	return State{
		Locale:         locale,
		ActiveCenter:   DefaultCenter,
		ViewportCenter: DefaultCenter,
		ViewportKm:     DefaultViewportKm,
	}
}

// WithManual stores the normalized manual set.
func (s State) WithManual(manual []models.Sauna) State {
	s.Manual = manual
	s.ManualLoaded = true
	return s
}

// WithFix caches the user's position without moving the map.
func (s State) WithFix(p geo.Point) State {
	s.UserLocation = &p
	return s
}

// WithUserLocation centers the session on p with the close-up viewport.
func (s State) WithUserLocation(p geo.Point) State {
	s.UserLocation = &p
	s.ActiveCenter = p
	s.ViewportCenter = p
	s.ViewportKm = LocatedViewportKm
	return s
}

// Visible is the merged, proximity-filtered list shown to the user.
func (s State) Visible() []models.Sauna {
	return reconcile.SelectNearby(reconcile.MergeSources(s.Manual, s.Live), s.ActiveCenter)
}

// ViewportBounds is the square viewport the map is fitted to.
func (s State) ViewportBounds() geo.Bounds {
	return geo.BoundsAround(s.ViewportCenter, s.ViewportKm)
}

// ViewportChanged reports whether the map moved far enough, or zoomed, since
// the last completed search to offer a new area search.
func (s State) ViewportChanged(v Viewport) bool {
	if !s.ReadyForAreaSearch || s.LastSearch == nil {
		return false
	}
	if geo.Distance(v.Center, s.LastSearch.Center) > MoveThresholdMeters {
		return true
	}
	if v.Zoom == nil {
		return false
	}
	return s.LastSearch.Zoom == nil || *v.Zoom != *s.LastSearch.Zoom
}

// SearchAreaLabel is the area search button text for the current state.
func (s State) SearchAreaLabel() string {
	if s.AreaBusy {
		return i18n.T(s.Locale, i18n.KeySearching, nil)
	}
	return i18n.T(s.Locale, i18n.KeySearchArea, nil)
}

// LocationLabel is the location button text for the current state.
func (s State) LocationLabel() string {
	if s.LocationBusy {
		return i18n.T(s.Locale, i18n.KeyLocating, nil)
	}
	return i18n.T(s.Locale, i18n.KeyLocationButton, nil)
}

func (s State) busy(k Kind) bool {
	switch k {
	case KindArea:
		return s.AreaBusy
	case KindLocation:
		return s.LocationBusy
	}
	return false
}

func (s State) setBusy(k Kind, v bool) State {
	switch k {
	case KindArea:
		s.AreaBusy = v
	case KindLocation:
		s.LocationBusy = v
	}
	return s
}

// begin starts a search of kind k, superseding any search in flight.
func (s State) begin(k Kind) (State, Ticket, error) {
	if s.busy(k) {
		return s, Ticket{}, ErrBusy
	}
	s = s.setBusy(k, true)
	s.Generation++
	return s, Ticket{Kind: k, Generation: s.Generation}, nil
}

// BeginSearch starts a live search of kind k around center. The active center
// moves to center right away. Radius is derived from bounds.
func (s State) BeginSearch(k Kind, center geo.Point, bounds *geo.Bounds) (State, Ticket, error) {
	s, t, err := s.begin(k)
	if err != nil {
		return s, t, err
	}
	s.ActiveCenter = center
	t.Center = center
	t.RadiusMeters = geo.SearchRadius(bounds, center)
	return s, t, nil
}

// BeginLocate marks a location request as running. The returned ticket has
// no center until Located is applied.
func (s State) BeginLocate() (State, Ticket, error) {
	return s.begin(KindLocation)
}

// Located records the user's position for t and recenters the viewport on
// it. The returned ticket carries the search center and radius.
func (s State) Located(t Ticket, p geo.Point) (State, Ticket, error) {
	if t.Generation != s.Generation {
		return s.Finish(t), t, ErrStale
	}
	s = s.WithUserLocation(p)
	bounds := s.ViewportBounds()
	t.Center = p
	t.RadiusMeters = geo.SearchRadius(&bounds, p)
	return s, t, nil
}

// Finish releases the busy flag held by t.
func (s State) Finish(t Ticket) State {
	return s.setBusy(t.Kind, false)
}

// ApplyLive replaces the live set with the result of t. Results of an older
// generation are dropped with ErrStale and leave the live set untouched.
func (s State) ApplyLive(t Ticket, live []models.Sauna, searched Viewport) (State, error) {
	s = s.Finish(t)
	if t.Generation != s.Generation {
		return s, ErrStale
	}
	s.Live = live
	s.LastSearch = &searched
	s.ReadyForAreaSearch = true
	return s, nil
}

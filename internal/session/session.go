package session

import (
	"context"
	"sync"

	"sauna/internal/models"
	"sauna/pkg/geo"
)

// Outcome is what one interaction produced.
type Outcome struct {
	Generation   uint64
	Center       geo.Point
	RadiusMeters float64
	Saunas       []models.Sauna
}

// Session serializes state transitions of one session while letting the
// slow parts (manual load, geolocation, live search) run unlocked. A newer
// search started meanwhile wins; the older one ends with ErrStale.
type Session struct {
	ID string

	handler *Handler
	mu      sync.Mutex
	state   State
}

func New(id string, h *Handler, locale string) *Session {
	return &Session{ID: id, handler: h, state: NewState(locale)}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) update(fn func(State) (State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	s.state = next
	return err
}

// RecordFix stores a position reported by the client without recentering.
func (s *Session) RecordFix(p geo.Point) {
	_ = s.update(func(st State) (State, error) { return st.WithFix(p), nil })
}

func (s *Session) outcome(t Ticket) Outcome {
	st := s.State()
	return Outcome{Generation: t.Generation, Center: t.Center, RadiusMeters: t.RadiusMeters, Saunas: st.Visible()}
}

// Bootstrap runs the initial flow. The manual dataset is loaded only once per
// session.
func (s *Session) Bootstrap(ctx context.Context) (Outcome, error) {
	st := s.State()
	if !st.ManualLoaded {
		loaded := s.handler.LoadManual(ctx, st.Locale)
		_ = s.update(func(st State) (State, error) { return st.WithManual(loaded), nil })
	}

	p, located := s.handler.Position(ctx, s.State())

	var t Ticket
	_ = s.update(func(st State) (State, error) {
		if located {
			st = st.WithUserLocation(p)
		}
		bounds := st.ViewportBounds()
		var err error
		st, t, err = st.BeginSearch(KindInitial, st.ViewportCenter, &bounds)
		return st, err
	})
	return s.finish(ctx, t, Viewport{Center: t.Center})
}

// SearchArea searches the reported viewport. It fails with ErrBusy while
// another area search is running.
func (s *Session) SearchArea(ctx context.Context, view Viewport) (Outcome, error) {
	var t Ticket
	if err := s.update(func(st State) (State, error) {
		var err error
		st, t, err = st.BeginSearch(KindArea, view.Center, view.Bounds)
		return st, err
	}); err != nil {
		return Outcome{}, err
	}
	return s.finish(ctx, t, view)
}

// GoToMyLocation locates the user and searches around the position. Without
// a position the visible list is returned for the unchanged center.
func (s *Session) GoToMyLocation(ctx context.Context) (Outcome, error) {
	var t Ticket
	if err := s.update(func(st State) (State, error) {
		var err error
		st, t, err = st.BeginLocate()
		return st, err
	}); err != nil {
		return Outcome{}, err
	}

	p, ok := s.handler.Position(ctx, s.State())
	if !ok {
		_ = s.update(func(st State) (State, error) { return st.Finish(t), nil })
		st := s.State()
		return Outcome{Generation: t.Generation, Center: st.ActiveCenter, Saunas: st.Visible()}, nil
	}

	if err := s.update(func(st State) (State, error) {
		var err error
		st, t, err = st.Located(t, p)
		return st, err
	}); err != nil {
		return Outcome{}, err
	}
	return s.finish(ctx, t, Viewport{Center: p})
}

func (s *Session) finish(ctx context.Context, t Ticket, searched Viewport) (Outcome, error) {
	live := s.handler.Fetch(ctx, s.State().Locale, t)
	if err := s.update(func(st State) (State, error) {
		return st.ApplyLive(t, live, searched)
	}); err != nil {
		return Outcome{}, err
	}
	return s.outcome(t), nil
}

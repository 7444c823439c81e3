package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/internal/geolocate"
	"sauna/internal/i18n"
	"sauna/pkg/geo"
)

func TestSession_Bootstrap(t *testing.T) {
	src := manualNearOslo()
	s := New("s-1", NewHandler(src, &fakeLive{}, nil, nil), i18n.English)

	out, err := s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Generation)
	assert.Equal(t, DefaultCenter, out.Center)
	assert.Equal(t, geo.MaxSearchRadiusMeters, out.RadiusMeters)
	require.Len(t, out.Saunas, 1)

	_, err = s.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestSession_StaleResultIsDropped(t *testing.T) {
	user := geo.Point{Lat: 60.39, Lng: 5.32}
	live := &fakeLive{gate: make(chan struct{}), entered: make(chan struct{})}
	s := New("s-2", NewHandler(nil, live, geolocate.Static{Point: user}, nil), i18n.English)

	area := Viewport{Center: geo.Point{Lat: 59.75, Lng: 10.2}}
	errs := make(chan error, 1)
	go func() {
		_, err := s.SearchArea(context.Background(), area)
		errs <- err
	}()

	select {
	case <-live.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("area search never reached the live fetch")
	}

	_, err := s.SearchArea(context.Background(), area)
	assert.ErrorIs(t, err, ErrBusy)

	out, err := s.GoToMyLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Generation)
	assert.Equal(t, user, out.Center)

	close(live.gate)
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("area search did not finish")
	}

	st := s.State()
	assert.False(t, st.AreaBusy)
	assert.False(t, st.LocationBusy)
	assert.Equal(t, user, st.ActiveCenter)
	require.Len(t, st.Live, 1)
	assert.Equal(t, user, *st.UserLocation)
	assert.InDelta(t, 10, geo.Distance(user, st.Live[0].Location), 0.5)
}

func TestSession_GoToMyLocationRefused(t *testing.T) {
	s := New("s-3", NewHandler(nil, &fakeLive{}, geolocate.None{}, nil), i18n.English)

	out, err := s.GoToMyLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCenter, out.Center)
	assert.False(t, s.State().LocationBusy)
}

func TestSession_GoToMyLocationUsesCachedFix(t *testing.T) {
	fix := geo.Point{Lat: 58.97, Lng: 5.73}
	live := &fakeLive{}
	s := New("s-4", NewHandler(nil, live, geolocate.None{}, nil), i18n.Norwegian)
	s.RecordFix(fix)
	assert.Equal(t, DefaultCenter, s.State().ActiveCenter)

	out, err := s.GoToMyLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fix, out.Center)
	assert.Equal(t, fix, live.last().center)
	assert.Equal(t, LocatedViewportKm, s.State().ViewportKm)
}

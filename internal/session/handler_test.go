package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/internal/geolocate"
	"sauna/internal/i18n"
	"sauna/internal/models"
	"sauna/pkg/geo"
	"sauna/pkg/places"
)

type fakeManual struct {
	recs  []models.Record
	calls int
}

func (f *fakeManual) Load(context.Context) ([]models.Record, error) {
	f.calls++
	return f.recs, nil
}

type fetchCall struct {
	center geo.Point
	radius float64
}

// fakeLive returns one place at every searched center. A non-nil gate blocks
// the first fetch until it is closed.
type fakeLive struct {
	mu      sync.Mutex
	calls   []fetchCall
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeLive) Fetch(_ context.Context, center geo.Point, radius float64) []places.Place {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{center: center, radius: radius})
	first := len(f.calls) == 1
	f.mu.Unlock()

	if first && f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	at := geo.Offset(center, 10, 0)
	return []places.Place{{
		ID:          fmt.Sprintf("live@%.5f,%.5f", center.Lat, center.Lng),
		DisplayName: places.LocalizedText{Text: "Live"},
		Location:    places.NewLatLng(at.Lat, at.Lng),
	}}
}

func (f *fakeLive) last() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func manualNearOslo() *fakeManual {
	return &fakeManual{recs: []models.Record{
		{"uuid": "m-1", "Name": "Manual One", "latitude": DefaultCenter.Lat, "longitude": DefaultCenter.Lng},
		{"uuid": "m-2", "latitude": 63.43, "longitude": 10.39},
	}}
}

func TestHandler_BootstrapWithoutLocation(t *testing.T) {
	src := manualNearOslo()
	live := &fakeLive{}
	h := NewHandler(src, live, geolocate.None{}, nil)

	st, visible := h.Bootstrap(context.Background(), NewState(i18n.Norwegian))

	assert.Equal(t, DefaultViewportKm, st.ViewportKm)
	assert.Equal(t, DefaultCenter, st.ActiveCenter)
	assert.Equal(t, geo.MaxSearchRadiusMeters, live.last().radius)
	assert.True(t, st.ReadyForAreaSearch)
	assert.True(t, st.ManualLoaded)

	// The live place 10 m away merges into the manual entry; the Trondheim
	// entry is outside the nearby radius.
	require.Len(t, visible, 1)
	assert.Equal(t, "m-1", visible[0].ID)
	require.Len(t, st.Manual, 2)
	assert.Equal(t, "Ukjent badstu", st.Manual[1].Name)

	_, _ = h.Bootstrap(context.Background(), st)
	assert.Equal(t, 1, src.calls)
}

func TestHandler_BootstrapWithLocation(t *testing.T) {
	user := geo.Point{Lat: 60.39, Lng: 5.32}
	live := &fakeLive{}
	h := NewHandler(nil, live, geolocate.Static{Point: user}, nil)

	st, visible := h.Bootstrap(context.Background(), NewState(i18n.English))

	require.NotNil(t, st.UserLocation)
	assert.Equal(t, user, st.ActiveCenter)
	assert.Equal(t, LocatedViewportKm, st.ViewportKm)
	assert.Equal(t, user, live.last().center)
	assert.InDelta(t, 5000, live.last().radius, 10)
	require.Len(t, visible, 1)
}

func TestHandler_SearchArea(t *testing.T) {
	live := &fakeLive{}
	h := NewHandler(nil, live, nil, nil)
	st, _ := h.Bootstrap(context.Background(), NewState(i18n.English))

	target := geo.Point{Lat: 59.75, Lng: 10.2}
	bounds := geo.BoundsAround(target, 16)
	view := Viewport{Center: target, Bounds: &bounds, Zoom: intPtr(12)}
	require.True(t, st.ViewportChanged(view))

	st, visible, err := h.SearchArea(context.Background(), st, view)
	require.NoError(t, err)
	assert.Equal(t, target, st.ActiveCenter)
	assert.InDelta(t, 8000, live.last().radius, 15)
	require.Len(t, visible, 1)
	assert.False(t, st.ViewportChanged(view))

	st.AreaBusy = true
	_, _, err = h.SearchArea(context.Background(), st, view)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestHandler_GoToMyLocationRefused(t *testing.T) {
	live := &fakeLive{}
	h := NewHandler(nil, live, geolocate.None{}, nil)
	st, _ := h.Bootstrap(context.Background(), NewState(i18n.English))
	before := len(live.calls)

	st, _, err := h.GoToMyLocation(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, st.LocationBusy)
	assert.Nil(t, st.UserLocation)
	assert.Equal(t, DefaultCenter, st.ActiveCenter)
	assert.Len(t, live.calls, before)
}

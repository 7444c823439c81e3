package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/internal/geolocate"
	"sauna/internal/i18n"
	"sauna/internal/models"
	"sauna/internal/session"
	"sauna/pkg/geo"
	"sauna/pkg/places"
)

type publishedMessage struct {
	key   string
	value []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []publishedMessage
}

func (p *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, publishedMessage{key: string(key), value: value})
	return nil
}

type nearbyLive struct{}

func (nearbyLive) Fetch(_ context.Context, center geo.Point, _ float64) []places.Place {
	p := geo.Offset(center, 200, 0)
	return []places.Place{{
		ID:          "live-near",
		DisplayName: places.LocalizedText{Text: "Nabo Badstu"},
		Location:    places.NewLatLng(p.Lat, p.Lng),
	}}
}

func newTestDispatcher(pub Publisher) (*Dispatcher, map[string]string) {
	return newTestDispatcherTTL(pub, 0)
}

func newTestDispatcherTTL(pub Publisher, idleTTL time.Duration) (*Dispatcher, map[string]string) {
	locales := make(map[string]string)
	var mu sync.Mutex
	factory := func(id, locale string) *session.Session {
		mu.Lock()
		locales[id] = locale
		mu.Unlock()
		return session.New(id, session.NewHandler(nil, nearbyLive{}, geolocate.None{}, nil), locale)
	}
	return NewDispatcher(factory, pub, idleTTL, nil), locales
}

func TestDecodeTrigger(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"area", `{"id":"t1","session":"s1","kind":"area","center":{"lat":59.9,"lng":10.7},"zoom":12}`, false},
		{"missing id", `{"session":"s1","kind":"initial"}`, false},
		{"no session", `{"id":"t1","kind":"initial"}`, true},
		{"unknown kind", `{"id":"t1","session":"s1","kind":"teleport"}`, true},
		{"garbage", `not json`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trig, err := DecodeTrigger(context.Background(), kafka.Message{Value: []byte(tc.value)})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, trig.ID)
		})
	}
}

func TestDispatcher_HandlePublishesResult(t *testing.T) {
	pub := &fakePublisher{}
	d, locales := newTestDispatcher(pub)

	err := d.Handle(context.Background(), models.SearchTrigger{ID: "t1", Session: "s1", Kind: "initial", Locale: "nb-NO"})
	require.NoError(t, err)
	assert.Equal(t, i18n.Norwegian, locales["s1"])

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "session/s1", pub.msgs[0].key)

	var res models.SearchResult
	require.NoError(t, json.Unmarshal(pub.msgs[0].value, &res))
	assert.Equal(t, "t1", res.TriggerID)
	assert.Equal(t, uint64(1), res.Generation)
	assert.Equal(t, session.DefaultCenter, res.Center)
	assert.Equal(t, geo.MaxSearchRadiusMeters, res.RadiusMeters)
	require.Len(t, res.Saunas, 1)
	assert.Equal(t, "live-near", res.Saunas[0].ID)
}

func TestDispatcher_LocationFromTrigger(t *testing.T) {
	pub := &fakePublisher{}
	d, _ := newTestDispatcher(pub)
	fix := geo.Point{Lat: 63.43, Lng: 10.39}

	require.NoError(t, d.Handle(context.Background(), models.SearchTrigger{ID: "t1", Session: "s2", Kind: "initial"}))
	require.NoError(t, d.Handle(context.Background(), models.SearchTrigger{ID: "t2", Session: "s2", Kind: "location", UserLocation: &fix}))

	require.Len(t, pub.msgs, 2)
	var res models.SearchResult
	require.NoError(t, json.Unmarshal(pub.msgs[1].value, &res))
	assert.Equal(t, uint64(2), res.Generation)
	assert.Equal(t, fix, res.Center)
	assert.InDelta(t, 5000, res.RadiusMeters, 10)
}

func TestDispatcher_Run(t *testing.T) {
	pub := &fakePublisher{}
	d, _ := newTestDispatcher(pub)

	deliveries := make(chan Delivery[models.SearchTrigger], 2)
	deliveries <- Delivery[models.SearchTrigger]{Data: models.SearchTrigger{ID: "a", Session: "x", Kind: "initial"}}
	deliveries <- Delivery[models.SearchTrigger]{Data: models.SearchTrigger{ID: "b", Session: "y", Kind: "area", Center: geo.Point{Lat: 60, Lng: 11}}}
	close(deliveries)

	d.Run(context.Background(), deliveries)

	keys := make([]string, 0, len(pub.msgs))
	for _, m := range pub.msgs {
		keys = append(keys, m.key)
	}
	assert.ElementsMatch(t, []string{"session/x", "session/y"}, keys)
}

func TestDispatcher_EvictsIdleSessions(t *testing.T) {
	pub := &fakePublisher{}
	d, _ := newTestDispatcherTTL(pub, time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, d.Handle(ctx, models.SearchTrigger{ID: "t1", Session: "old", Kind: "initial"}))
	require.NoError(t, d.Handle(ctx, models.SearchTrigger{ID: "t2", Session: "kept", Kind: "initial"}))
	assert.Len(t, d.sessions, 2)

	clock = clock.Add(30 * time.Second)
	require.NoError(t, d.Handle(ctx, models.SearchTrigger{ID: "t3", Session: "kept", Kind: "area", Center: geo.Point{Lat: 60, Lng: 11}}))

	clock = clock.Add(45 * time.Second)
	require.NoError(t, d.Handle(ctx, models.SearchTrigger{ID: "t4", Session: "new", Kind: "initial"}))
	assert.NotContains(t, d.sessions, "old")
	assert.Contains(t, d.sessions, "kept")
	assert.Contains(t, d.sessions, "new")

	// an evicted session starts over at generation 1
	clock = clock.Add(2 * time.Minute)
	require.NoError(t, d.Handle(ctx, models.SearchTrigger{ID: "t5", Session: "kept", Kind: "initial"}))
	var res models.SearchResult
	require.NoError(t, json.Unmarshal(pub.msgs[len(pub.msgs)-1].value, &res))
	assert.Equal(t, uint64(1), res.Generation)
}

func TestDispatcher_KeepsBusySessions(t *testing.T) {
	d, _ := newTestDispatcherTTL(&fakePublisher{}, time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return clock }

	d.acquire(models.SearchTrigger{Session: "busy"})
	clock = clock.Add(time.Hour)
	d.acquire(models.SearchTrigger{Session: "other"})
	assert.Contains(t, d.sessions, "busy")

	d.release("busy")
	clock = clock.Add(2 * time.Minute)
	d.acquire(models.SearchTrigger{Session: "other"})
	assert.NotContains(t, d.sessions, "busy")
}

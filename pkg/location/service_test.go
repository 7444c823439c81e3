package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/pkg/geo"
)

func TestClient_Geocode(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		body        string
		status      int
		wantCity    string
		wantCountry string
		wantPoint   geo.Point
		wantBounds  *geo.Bounds
		wantErr     error
		wantAnyErr  bool
	}{
		{
			name:        "city",
			query:       "Oslo",
			body:        `[{"osm_id": 1, "lat": "59.9133301", "lon": "10.7389701", "type": "city", "display_name": "Oslo, Norge", "address": {"city": "Oslo", "country": "Norge"}, "boundingbox": ["59.80", "60.13", "10.48", "10.95"]}]`,
			status:      http.StatusOK,
			wantCity:    "Oslo",
			wantCountry: "Norge",
			wantPoint:   geo.Point{Lat: 59.9133301, Lng: 10.7389701},
			wantBounds:  &geo.Bounds{South: 59.80, North: 60.13, West: 10.48, East: 10.95},
		},
		{
			name:        "town fallback",
			query:       "Drøbak",
			body:        `[{"lat": "59.66", "lon": "10.63", "address": {"town": "Drøbak", "country": "Norge"}}]`,
			status:      http.StatusOK,
			wantCity:    "Drøbak",
			wantCountry: "Norge",
			wantPoint:   geo.Point{Lat: 59.66, Lng: 10.63},
		},
		{
			name:    "no results",
			query:   "Atlantis",
			body:    `[]`,
			status:  http.StatusOK,
			wantErr: ErrNoResults,
		},
		{
			name:       "bad status",
			query:      "Oslo",
			body:       `{}`,
			status:     http.StatusServiceUnavailable,
			wantAnyErr: true,
		},
		{
			name:       "bad coordinates",
			query:      "Oslo",
			body:       `[{"lat": "north", "lon": "10"}]`,
			status:     http.StatusOK,
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, tt.query, r.URL.Query().Get("q"))
				assert.Equal(t, "nb", r.URL.Query().Get("accept-language"))
				assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := NewClient(server.URL, "test-agent").Geocode(context.Background(), tt.query, "nb")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				return
			case tt.wantAnyErr:
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCity, got.City)
			assert.Equal(t, tt.wantCountry, got.Country)
			assert.Equal(t, tt.wantPoint, got.Point)
			assert.Equal(t, tt.wantBounds, got.BoundingBox)
		})
	}
}

package manual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/internal/models"
	"sauna/internal/storage"
)

const jsonList = `[
  {"uuid": "m-1", "Name": "Langkaia", "latitude": 59.9075, "longitude": 10.7461},
  "not an object",
  {"uuid": "m-2", "coordinates": {"lat": 59.91, "lng": 10.75}}
]`

const jsonEnvelope = `{"version": 2, "saunas": [{"id": "m-3", "lat": 60, "lng": 11}]}`

const yamlList = `
saunas:
  - uuid: y-1
    name: Sørenga
    location:
      lat: 59.9013
      lng: 10.7537
    userRatingCount: 12
`

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		format  Format
		wantIDs []string
		wantErr bool
	}{
		{"json list", jsonList, FormatJSON, []string{"m-1", "m-2"}, false},
		{"json envelope", jsonEnvelope, FormatJSON, []string{"m-3"}, false},
		{"json object without list", `{"saunas": "none"}`, FormatJSON, []string{}, false},
		{"json scalar", `42`, FormatJSON, []string{}, false},
		{"yaml envelope", yamlList, FormatYAML, []string{"y-1"}, false},
		{"broken json", `[{"uuid":`, FormatJSON, nil, true},
		{"broken yaml", "saunas: [a, b", FormatYAML, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.data), tc.format)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, rec := range got {
				id, _ := rec["uuid"].(string)
				if id == "" {
					id, _ = rec["id"].(string)
				}
				ids = append(ids, id)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestDecode_KeepsNumbersExact(t *testing.T) {
	got, err := Decode([]byte(`[{"id": 9007199254740993, "lat": 59.9}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, json.Number("9007199254740993"), got[0]["id"])
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("data/saunas.manual.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("SAUNAS.YML"))
	assert.Equal(t, FormatJSON, FormatFor("data/saunas.manual.json"))
	assert.Equal(t, FormatJSON, FormatFor("saunas"))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saunas.manual.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonEnvelope), 0o600))

	got, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = FileSource{Path: filepath.Join(dir, "missing.json")}.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeStore struct {
	data map[string][]byte
	err  error
}

func (f fakeStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, storage.ErrNotFound)
	}
	return data, nil
}

func TestS3Source(t *testing.T) {
	store := fakeStore{data: map[string][]byte{
		"saunas/data/saunas.manual.yaml": []byte(yamlList),
	}}

	got, err := S3Source{Store: store, Bucket: "saunas", Key: "data/saunas.manual.yaml"}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y-1", got[0]["uuid"])

	_, err = S3Source{Store: store, Bucket: "saunas", Key: "missing.json"}.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = S3Source{Store: fakeStore{err: errors.New("connection refused")}, Bucket: "b", Key: "k"}.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

type stubSource struct {
	recs []models.Record
	err  error
}

func (s stubSource) Load(context.Context) ([]models.Record, error) { return s.recs, s.err }

func TestLoad_Degrades(t *testing.T) {
	ctx := context.Background()

	assert.Len(t, Load(ctx, stubSource{recs: []models.Record{{"id": "a"}}}, nil), 1)
	assert.Empty(t, Load(ctx, stubSource{err: fmt.Errorf("x: %w", ErrNotFound)}, nil))
	assert.Empty(t, Load(ctx, stubSource{err: errors.New("boom")}, nil))
	assert.Empty(t, Load(ctx, nil, nil))
}

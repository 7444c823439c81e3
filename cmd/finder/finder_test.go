package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sauna/internal/i18n"
	"sauna/internal/models"
	"sauna/internal/session"
	"sauna/pkg/geo"
)

func TestParseBounds(t *testing.T) {
	cases := []struct {
		in      string
		want    geo.Bounds
		wantErr bool
	}{
		{"60.0,59.8,10.9,10.6", geo.Bounds{North: 60, South: 59.8, East: 10.9, West: 10.6}, false},
		{" 60 , 59.8 , 10.9 , 10.6 ", geo.Bounds{North: 60, South: 59.8, East: 10.9, West: 10.6}, false},
		{"60,59.8,10.9", geo.Bounds{}, true},
		{"59,60,10.9,10.6", geo.Bounds{}, true},
		{"a,b,c,d", geo.Bounds{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseBounds(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnvironmentLocale(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"lc_all wins over lang", map[string]string{"LC_ALL": "en_US.UTF-8", "LANG": "nb_NO.UTF-8"}, i18n.English},
		{"lc_messages before lang", map[string]string{"LC_MESSAGES": "nn_NO", "LANG": "en_GB"}, i18n.Norwegian},
		{"lang alone", map[string]string{"LANG": "nb_NO.UTF-8"}, i18n.Norwegian},
		{"empty values skipped", map[string]string{"LC_ALL": "", "LANG": "nb_NO"}, i18n.Norwegian},
		{"nothing set", map[string]string{}, i18n.English},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			getenv := func(key string) string { return tc.env[key] }
			assert.Equal(t, tc.want, i18n.DetectLocale(environmentLocale(getenv)))
		})
	}
}

func TestWriteText(t *testing.T) {
	rating, count := 4.6, 120
	st := session.NewState(i18n.Norwegian)
	saunas := []models.Sauna{
		{
			ID:              "a",
			Name:            "Langkaia Badstu",
			Location:        geo.Offset(session.DefaultCenter, 1500, 0),
			MapsURI:         "https://maps.example/a",
			WebpageURLNo:    "https://badstu.example/no",
			WebpageURLEn:    "https://badstu.example/en",
			Rating:          &rating,
			UserRatingCount: &count,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, st, saunas, "Oslo"))
	out := buf.String()
	assert.Contains(t, out, "1 badstuer nær Oslo")
	assert.Contains(t, out, "Langkaia Badstu  (1.5 km)")
	assert.Contains(t, out, "Adresse ikke tilgjengelig")
	assert.Contains(t, out, "https://badstu.example/no")
	assert.NotContains(t, out, "https://badstu.example/en")
	assert.Contains(t, out, "Åpne i Google Maps: https://maps.example/a")
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, nil))
	var got []models.Sauna
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCheckDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saunas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`saunas:
  - uuid: a
    name: A
    lat: 59.9
    lng: 10.7
  - uuid: a
    name: A again
    lat: 59.9
    lng: 10.7
  - uuid: b
  - name: no id
    lat: 1
    lng: 1
`), 0o600))

	_, report, err := checkDataset(path)
	require.NoError(t, err)
	assert.Equal(t, datasetReport{Records: 4, Usable: 2, Duplicates: 1}, report)

	_, _, err = checkDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestManualCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saunas.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","latitude":59.9,"longitude":10.7}]`), 0o600))

	cmd := newManualCheckCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "records: 1\nusable: 1\nduplicates: 0\n", buf.String())
}

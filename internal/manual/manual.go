// Package manual loads the curated sauna dataset. Records are returned raw;
// normalization happens downstream.
package manual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"sauna/internal/logging"
	"sauna/internal/models"
)

// ErrNotFound marks a source that does not exist. Callers treat it as an
// empty dataset without reporting an error.
var ErrNotFound = errors.New("manual dataset not found")

// Source yields the raw manual records.
type Source interface {
	Load(ctx context.Context) ([]models.Record, error)
}

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file name or object key extension.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a manual dataset. The payload is either a list of records or
// an object with a "saunas" list; any other shape yields no records. List
// entries that are not objects are skipped.
func Decode(data []byte, format Format) ([]models.Record, error) {
	var payload any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode YAML manual dataset: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return nil, fmt.Errorf("failed to decode JSON manual dataset: %w", err)
		}
	}

	var list []any
	switch p := payload.(type) {
	case []any:
		list = p
	case map[string]any:
		list, _ = p["saunas"].([]any)
	}

	out := make([]models.Record, 0, len(list))
	for _, item := range list {
		switch rec := item.(type) {
		case map[string]any:
			out = append(out, rec)
		case map[any]any:
			converted := make(models.Record, len(rec))
			for k, v := range rec {
				if ks, ok := k.(string); ok {
					converted[ks] = v
				}
			}
			out = append(out, converted)
		}
	}
	return out, nil
}

// Load reads src and degrades every failure to an empty dataset. Missing
// sources are not logged as errors.
func Load(ctx context.Context, src Source, logger *zap.Logger) []models.Record {
	logger = logging.OrNop(logger)
	if src == nil {
		return nil
	}
	recs, err := src.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Info("no manual dataset found")
		return nil
	case err != nil:
		logger.Error("failed to load manual saunas", zap.Error(err))
		return nil
	}
	logger.Info("loaded manual dataset", zap.Int("records", len(recs)))
	return recs
}

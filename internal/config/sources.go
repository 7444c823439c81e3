package config

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sauna/internal/keys"
	"sauna/internal/manual"
	"sauna/internal/storage"
)

// ManualObjectKey is the object key read by the s3 source: ManualKey when
// set, otherwise the key manual push derives from ManualPath.
func (c *Config) ManualObjectKey() string {
	if c.ManualKey != "" {
		return c.ManualKey
	}
	return keys.ManualDataset(c.ManualPath)
}

// OpenManualSource opens the configured manual dataset source. The returned
// close function releases any connection it holds.
func (c *Config) OpenManualSource(ctx context.Context, logger *zap.Logger) (manual.Source, func(), error) {
	switch c.ManualSource {
	case SourceS3:
		store, err := storage.NewS3Service(c.Storage, logger)
		if err != nil {
			return nil, nil, err
		}
		return manual.S3Source{Store: store, Bucket: c.ManualBucket, Key: c.ManualObjectKey()}, func() {}, nil
	case SourcePostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return manual.PostgresSource{DB: pool, Table: manual.DefaultTable}, pool.Close, nil
	default:
		return manual.FileSource{Path: c.ManualPath}, func() {}, nil
	}
}

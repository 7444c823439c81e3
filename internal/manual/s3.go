package manual

import (
	"context"
	"errors"
	"fmt"

	"sauna/internal/models"
	"sauna/internal/storage"
)

// ObjectGetter is implemented by *storage.S3Service.
type ObjectGetter interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Source reads the dataset from an object store.
type S3Source struct {
	Store  ObjectGetter
	Bucket string
	Key    string
}

func (s S3Source) Load(ctx context.Context) ([]models.Record, error) {
	data, err := s.Store.Get(ctx, s.Bucket, s.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", s.Bucket, s.Key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatFor(s.Key))
}

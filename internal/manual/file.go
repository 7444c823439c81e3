package manual

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"sauna/internal/models"
)

// FileSource reads the dataset from the local file system.
type FileSource struct {
	Path string
}

func (f FileSource) Load(_ context.Context) ([]models.Record, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", f.Path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manual dataset: %w", err)
	}
	return Decode(data, FormatFor(f.Path))
}

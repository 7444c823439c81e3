package manual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"sauna/internal/models"
)

// undefinedTable is the Postgres error code for a missing relation.
const undefinedTable = "42P01"

// DefaultTable holds one JSONB document per manual record.
const DefaultTable = "manual_saunas"

// Querier is implemented by *pgxpool.Pool and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads raw records from a table with a "position" column for
// ordering and a "data" JSONB column holding the record.
type PostgresSource struct {
	DB    Querier
	Table string
}

func (p PostgresSource) Load(ctx context.Context) ([]models.Record, error) {
	table := p.Table
	if table == "" {
		table = DefaultTable
	}

	query := fmt.Sprintf("SELECT data FROM %s ORDER BY position", pgx.Identifier{table}.Sanitize())
	rows, err := p.DB.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err, table)
	}

	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, mapPgError(err, table)
	}

	out := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		dec := json.NewDecoder(bytes.NewReader(doc))
		dec.UseNumber()
		var rec models.Record
		if err := dec.Decode(&rec); err != nil || rec == nil {
			// not an object; the normalizer would drop it anyway
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func mapPgError(err error, table string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("table %s: %w", table, ErrNotFound)
	}
	return fmt.Errorf("failed to query manual saunas: %w", err)
}

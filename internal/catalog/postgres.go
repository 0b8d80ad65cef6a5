package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

const postgresDefaultSchema = "public"

// udt_name is the internal type name ("int4", "timestamptz", "_text") the converter expects
const postgresColumnsQuery = `
	SELECT column_name::text, udt_name::text
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position`

// Postgres reads column types from information_schema
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL and verifies the connection
func NewPostgres(ctx context.Context, connectionString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping postgres")
	}
	return &Postgres{pool: pool}, nil
}

// Columns returns the columns of table in ordinal order
func (p *Postgres) Columns(ctx context.Context, table string) ([]cdc.Column, error) {
	schema, name := SplitTableName(table, postgresDefaultSchema)

	rows, err := p.pool.Query(ctx, postgresColumnsQuery, schema, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query columns of %s.%s", schema, name)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cdc.Column])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan columns of %s.%s", schema, name)
	}
	if len(columns) == 0 {
		return nil, errors.Wrapf(ErrTableNotFound, "%s.%s", schema, name)
	}
	return columns, nil
}

// Close releases the connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Package catalog looks up the declared column types of a table, for change payloads that
// carry values without types.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/internal/utils"
	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Connection attempts made by Open before giving up
const (
	connectAttempts        = 5
	connectInitialInterval = 500 * time.Millisecond
	connectMaxInterval     = 8 * time.Second
)

// Supported catalog providers
const (
	ProviderPostgres  = "postgres"
	ProviderSQLServer = "sqlserver"
)

// ErrTableNotFound is returned when a table has no known columns
var ErrTableNotFound = errors.New("table not found")

// Source is a ColumnSource holding resources that must be released
type Source interface {
	cdc.ColumnSource
	Close() error
}

// Open connects to the catalog of the given provider, retrying with backoff while the
// database is unreachable
func Open(ctx context.Context, provider, connectionString string) (Source, error) {
	var connect func() (Source, error)
	switch provider {
	case ProviderPostgres, "postgresql":
		connect = func() (Source, error) { return NewPostgres(ctx, connectionString) }
	case ProviderSQLServer, "mssql":
		connect = func() (Source, error) { return NewSQLServer(connectionString) }
	default:
		return nil, errors.Newf("unsupported catalog provider %q", provider)
	}

	var source Source
	backoff := utils.NewBackoffManager(connectInitialInterval, connectMaxInterval)
	err := utils.Retry(ctx, connectAttempts, backoff, func() error {
		var err error
		source, err = connect()
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s catalog", provider)
	}
	return source, nil
}

// DefaultSchema returns the schema unqualified table names resolve to for provider
func DefaultSchema(provider string) string {
	switch provider {
	case ProviderSQLServer, "mssql":
		return sqlServerDefaultSchema
	default:
		return postgresDefaultSchema
	}
}

// SplitTableName splits "schema.table" into its parts, using defaultSchema when the name
// is not qualified. Surrounding double quotes or brackets are removed from each part.
func SplitTableName(name, defaultSchema string) (schema, table string) {
	schema, table, ok := strings.Cut(name, ".")
	if !ok {
		schema, table = defaultSchema, name
	}
	return unquoteIdent(schema), unquoteIdent(table)
}

func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '[' && s[len(s)-1] == ']')) {
		return s[1 : len(s)-1]
	}
	return s
}

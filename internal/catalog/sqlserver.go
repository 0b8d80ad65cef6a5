package catalog

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/denisenkom/go-mssqldb"

	"github.com/katasec/dstream-transformer/internal/payload"
	"github.com/katasec/dstream-transformer/pkg/cdc"
)

const sqlServerDefaultSchema = "dbo"

const sqlServerColumnsQuery = `
	SELECT COLUMN_NAME, DATA_TYPE
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = @schema AND TABLE_NAME = @tableName
	ORDER BY ORDINAL_POSITION`

// SQLServer reads column types from INFORMATION_SCHEMA and maps them to the internal type
// names ("int" becomes "int4", "datetimeoffset" becomes "timestamptz"). Types with no
// counterpart, such as "nvarchar", pass through.
type SQLServer struct {
	db *sql.DB
}

// NewSQLServer establishes a connection to SQL Server database
func NewSQLServer(connectionString string) (*SQLServer, error) {
	db, err := sql.Open("sqlserver", connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return &SQLServer{db: db}, nil
}

// Columns returns the columns of table in ordinal order
func (s *SQLServer) Columns(ctx context.Context, table string) ([]cdc.Column, error) {
	schema, name := SplitTableName(table, sqlServerDefaultSchema)

	rows, err := s.db.QueryContext(ctx, sqlServerColumnsQuery, sql.Named("schema", schema), sql.Named("tableName", name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query columns of %s.%s", schema, name)
	}
	defer rows.Close()

	var columns []cdc.Column
	for rows.Next() {
		var col cdc.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, errors.Wrapf(err, "failed to scan columns of %s.%s", schema, name)
		}
		col.Type = payload.NormalizeSQLServerTypeName(col.Type)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Wrapf(ErrTableNotFound, "%s.%s", schema, name)
	}
	return columns, nil
}

// Close closes the database handle
func (s *SQLServer) Close() error {
	return s.db.Close()
}

package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Static serves columns declared up front, keyed by schema.table
type Static struct {
	tables        map[string][]cdc.Column
	defaultSchema string
}

// NewStatic returns a Static catalog. Unqualified keys and lookups use defaultSchema.
func NewStatic(tables map[string][]cdc.Column, defaultSchema string) *Static {
	s := &Static{tables: make(map[string][]cdc.Column, len(tables)), defaultSchema: defaultSchema}
	for name, columns := range tables {
		schema, table := SplitTableName(name, defaultSchema)
		s.tables[schema+"."+table] = columns
	}
	return s
}

// Columns returns the declared columns of table
func (s *Static) Columns(_ context.Context, table string) ([]cdc.Column, error) {
	schema, name := SplitTableName(table, s.defaultSchema)
	columns, ok := s.tables[schema+"."+name]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%s.%s", schema, name)
	}
	return columns, nil
}

// Close is a no-op
func (s *Static) Close() error {
	return nil
}

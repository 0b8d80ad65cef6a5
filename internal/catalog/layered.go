package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Layered asks each source in turn and returns the first answer. A source that does not
// know the table passes the lookup on; any other failure stops it.
type Layered struct {
	sources []Source
}

// NewLayered returns a Layered source over sources, in priority order
func NewLayered(sources ...Source) *Layered {
	return &Layered{sources: sources}
}

// Columns returns the columns of table from the first source that knows it
func (l *Layered) Columns(ctx context.Context, table string) ([]cdc.Column, error) {
	for _, s := range l.sources {
		columns, err := s.Columns(ctx, table)
		if errors.Is(err, ErrTableNotFound) {
			continue
		}
		return columns, err
	}
	return nil, errors.Wrapf(ErrTableNotFound, "%s", table)
}

// Close closes every source and returns the first error
func (l *Layered) Close() error {
	var first error
	for _, s := range l.sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package convert

import (
	"github.com/cockroachdb/errors"
	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Options configures the conversion of one record. The zero value converts every column.
type Options struct {
	// SkipTypes lists declared types whose values are returned unconverted.
	SkipTypes []string `json:"skip_types,omitempty"`
}

func (o Options) skipSet() map[string]struct{} {
	if len(o.SkipTypes) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(o.SkipTypes))
	for _, t := range o.SkipTypes {
		set[t] = struct{}{}
	}
	return set
}

// ConvertRecord converts every value of record using the declared type of its column.
// The result has exactly the keys of record. A key without a column fails the whole
// record with an error wrapping ErrUnknownColumn; columns and records are out of sync.
func (c *Converter) ConvertRecord(columns []cdc.Column, record cdc.Record, opts Options) (cdc.Record, error) {
	// first declaration of a name wins
	declared := make(map[string]string, len(columns))
	for _, col := range columns {
		if _, seen := declared[col.Name]; !seen {
			declared[col.Name] = col.Type
		}
	}
	skip := opts.skipSet()

	out := make(cdc.Record, len(record))
	for key, raw := range record {
		typeName, ok := declared[key]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownColumn, "column %q", key)
		}
		if _, skipped := skip[typeName]; skipped {
			out[key] = raw
			continue
		}
		out[key] = c.ConvertCell(typeName, raw)
	}
	return out, nil
}

var defaultConverter = New()

// ConvertCell converts raw with the built-in type table.
func ConvertCell(typeName string, raw any) any {
	return defaultConverter.ConvertCell(typeName, raw)
}

// ConvertChangeData converts a record with the built-in type table.
func ConvertChangeData(columns []cdc.Column, record cdc.Record, opts Options) (cdc.Record, error) {
	return defaultConverter.ConvertRecord(columns, record, opts)
}

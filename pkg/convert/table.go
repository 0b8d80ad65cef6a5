package convert

import (
	"maps"
	"slices"
)

// ConversionFunc converts the text form of a single value into its native representation.
type ConversionFunc func(raw string) (any, error)

// arrayPrefix marks an array type; "_int4" is an array of int4.
const arrayPrefix = "_"

// conversionTable maps database type names to their conversion. Names missing from the
// table pass through unchanged. It is never modified after initialisation.
var conversionTable = map[string]ConversionFunc{
	"abstime":     noop,
	"bool":        toBoolean,
	"date":        noop,
	"daterange":   toDateRange,
	"float4":      toFloat,
	"float8":      toFloat,
	"int2":        toInt,
	"int4":        toInt,
	"int8":        toInt,
	"int4range":   toIntRange,
	"int8range":   toIntRange,
	"json":        toJSON,
	"jsonb":       toJSON,
	"money":       toFloat,
	"numeric":     toFloat,
	"oid":         toInt,
	"reltime":     noop,
	"time":        noop,
	"timestamp":   toTimestampString,
	"timestamptz": toDateTime,
	"timetz":      toDateTime,
	"tsrange":     toDateRange,
	"tstzrange":   toDateRange,
}

// TypeNames returns the recognised type names in sorted order.
func TypeNames() []string {
	return slices.Sorted(maps.Keys(conversionTable))
}

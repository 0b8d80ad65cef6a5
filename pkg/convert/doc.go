// Package convert turns the text-encoded column values of a CDC record into native Go values.
//
// Every value in a change record arrives as a string (or nil). The declared database type of
// the column selects a conversion function from a fixed type table:
//
//	bool                            "t" / "f" -> true / false, anything else -> nil
//	int2 int4 int8 oid              int64
//	float4 float8 money numeric     float64 (decimal.Decimal with WithPreciseNumerics)
//	json jsonb                      generic JSON value
//	timestamptz timetz              time.Time
//	timestamp                       ISO-8601 string ("2023-01-01T10:00:00")
//	int4range int8range             []any{lower, upper} of int64
//	daterange tsrange tstzrange     []any{lower, upper} of time.Time
//	date abstime reltime time       unchanged
//
// A type name starting with "_" is an array of the remaining type. Array literals are split
// naively on commas, so elements that themselves contain commas (quoted text, nested arrays,
// JSON) are not decoded correctly.
//
// Unknown type names pass through unchanged. A value that fails to convert is logged,
// reported to the Observer and returned as the original string, so one bad cell never
// aborts a record. Only a record key without a declared column is an error.
package convert

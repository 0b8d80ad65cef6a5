package payload

import (
	"regexp"
	"strings"
)

var typeModifier = regexp.MustCompile(`\([^)]*\)`)

// sqlTypeNames maps the SQL spelling wal2json reports to the internal type name.
var sqlTypeNames = map[string]string{
	"bigint":                      "int8",
	"integer":                     "int4",
	"smallint":                    "int2",
	"boolean":                     "bool",
	"real":                        "float4",
	"double precision":            "float8",
	"decimal":                     "numeric",
	"character varying":           "varchar",
	"character":                   "bpchar",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamptz",
	"time without time zone":      "time",
	"time with time zone":         "timetz",
}

// NormalizeTypeName turns a declared SQL type such as "integer", "numeric(10,2)",
// "timestamp with time zone" or "text[]" into the internal name ("int4", "numeric",
// "timestamptz", "_text"). Names it does not know are returned lower-cased.
func NormalizeTypeName(t string) string {
	name := strings.ToLower(strings.TrimSpace(typeModifier.ReplaceAllString(t, "")))
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimPrefix(name, "pg_catalog.")

	array := false
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		array = true
	}
	if internal, ok := sqlTypeNames[name]; ok {
		name = internal
	}
	if array {
		return "_" + name
	}
	return name
}

// sqlServerTypeNames maps INFORMATION_SCHEMA.COLUMNS.DATA_TYPE values of SQL Server to the
// internal type name. bit is left out: its text form is "true"/"false", not "t"/"f".
var sqlServerTypeNames = map[string]string{
	"bigint":         "int8",
	"int":            "int4",
	"smallint":       "int2",
	"tinyint":        "int2",
	"real":           "float4",
	"float":          "float8",
	"decimal":        "numeric",
	"numeric":        "numeric",
	"money":          "money",
	"smallmoney":     "money",
	"datetimeoffset": "timestamptz",
	"datetime2":      "timestamp",
	"datetime":       "timestamp",
	"smalldatetime":  "timestamp",
	"date":           "date",
	"time":           "time",
}

// NormalizeSQLServerTypeName turns a SQL Server DATA_TYPE such as "int", "float(53)" or
// "datetimeoffset" into the internal name. Names it does not know are returned lower-cased
// and pass through unconverted.
func NormalizeSQLServerTypeName(t string) string {
	name := strings.ToLower(strings.TrimSpace(typeModifier.ReplaceAllString(t, "")))
	if internal, ok := sqlServerTypeNames[name]; ok {
		return internal
	}
	return name
}

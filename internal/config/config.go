package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/katasec/dstream-transformer/internal/logging"
	"github.com/katasec/dstream-transformer/internal/payload"
	"github.com/katasec/dstream-transformer/pkg/cdc"
	"github.com/katasec/dstream-transformer/pkg/convert"
)

// Config holds the strongly-typed configuration for the transformer
type Config struct {
	InputFormat string        // Payload format read from the input, see payload.Formats
	LogLevel    string        // hclog level name
	FailFast    bool          // Stop on the first batch that cannot be read or decoded
	Options     OptionsConfig // Conversion options
	Catalog     CatalogConfig // Where column types come from when payloads carry none
	Metrics     MetricsConfig // Prometheus scrape endpoint
}

// OptionsConfig holds conversion options
type OptionsConfig struct {
	SkipTypes       []string // Declared types that are never converted
	PreciseNumerics bool     // Decode numeric and money as decimals
}

// CatalogConfig holds configuration for the column catalog
type CatalogConfig struct {
	Provider         string                  // "postgres" or "sqlserver"; empty for static tables only
	ConnectionString string                  // Connection string for the provider
	Tables           map[string][]cdc.Column // Statically declared tables, keyed by schema.table
}

// MetricsConfig holds configuration for the metrics endpoint
type MetricsConfig struct {
	ListenAddress string // e.g. ":9102"; empty disables the endpoint
}

// Enabled reports whether any column source is configured
func (c CatalogConfig) Enabled() bool {
	return c.Provider != "" || len(c.Tables) > 0
}

// ConvertOptions returns the per-record conversion options
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{SkipTypes: c.Options.SkipTypes}
}

// LoadFile reads a JSON configuration file into the Struct form the plugin receives
func LoadFile(path string) (*structpb.Struct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseJSON(data)
}

// ParseJSON converts a JSON document into a Struct
func ParseJSON(data []byte) (*structpb.Struct, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	s, err := structpb.NewStruct(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert config")
	}
	return s, nil
}

// LoadConfigFromJSON loads and validates configuration from JSON input
func LoadConfigFromJSON(jsonData []byte) (*Config, error) {
	s, err := ParseJSON(jsonData)
	if err != nil {
		return nil, err
	}
	return FromStruct(s)
}

// FromStruct validates a Struct config block and returns the typed Config
func FromStruct(cfg *structpb.Struct) (*Config, error) {
	if cfg == nil {
		return FromMap(nil)
	}
	return FromMap(cfg.AsMap())
}

// FromMap validates a decoded config map and returns the typed Config
func FromMap(raw map[string]any) (*Config, error) {
	config := &Config{InputFormat: payload.FormatRealtime}

	// --- optional: input_format ----------------------------------------------------------------
	if v, ok := raw["input_format"]; ok {
		format, ok := v.(string)
		if !ok || !payload.IsFormat(format) {
			return nil, errors.Newf("input_format must be one of %v", payload.Formats())
		}
		config.InputFormat = format
	}

	// --- optional: log_level -------------------------------------------------------------------
	if v, ok := raw["log_level"]; ok {
		level, ok := v.(string)
		if !ok {
			return nil, errors.New("log_level must be a string")
		}
		if _, err := logging.ParseLevel(level); err != nil {
			return nil, err
		}
		config.LogLevel = level
	}

	// --- optional: fail_fast -------------------------------------------------------------------
	if v, ok := raw["fail_fast"]; ok {
		failFast, ok := v.(bool)
		if !ok {
			return nil, errors.New("fail_fast must be a boolean")
		}
		config.FailFast = failFast
	}

	// --- optional: options ---------------------------------------------------------------------
	if v, ok := raw["options"]; ok && v != nil {
		options, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("options must be an object")
		}
		skipTypes, err := stringList(options, "skip_types")
		if err != nil {
			return nil, err
		}
		config.Options.SkipTypes = skipTypes

		if p, ok := options["precise_numerics"]; ok {
			precise, ok := p.(bool)
			if !ok {
				return nil, errors.New("options.precise_numerics must be a boolean")
			}
			config.Options.PreciseNumerics = precise
		}
	}

	// --- optional: catalog ---------------------------------------------------------------------
	if v, ok := raw["catalog"]; ok && v != nil {
		catalog, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("catalog must be an object")
		}
		if err := parseCatalog(catalog, &config.Catalog); err != nil {
			return nil, err
		}
	}

	// --- optional: metrics ---------------------------------------------------------------------
	if v, ok := raw["metrics"]; ok && v != nil {
		metrics, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("metrics must be an object")
		}
		if addr, ok := metrics["listen_address"].(string); ok {
			config.Metrics.ListenAddress = addr
		}
	}

	if config.InputFormat == payload.FormatRows && !config.Catalog.Enabled() {
		return nil, errors.Newf("missing required config: catalog (input_format %q carries no column types)", payload.FormatRows)
	}
	return config, nil
}

func parseCatalog(raw map[string]any, out *CatalogConfig) error {
	if provider, ok := raw["provider"].(string); ok && provider != "" {
		connStr, ok := raw["connection_string"].(string)
		if !ok || connStr == "" {
			return errors.New("missing required config: catalog.connection_string")
		}
		out.Provider = provider
		out.ConnectionString = connStr
	}

	tables, ok := raw["tables"]
	if !ok || tables == nil {
		return nil
	}
	tableMap, ok := tables.(map[string]any)
	if !ok {
		return errors.New("catalog.tables must be an object of table name to column list")
	}
	out.Tables = make(map[string][]cdc.Column, len(tableMap))
	for table, cols := range tableMap {
		list, ok := cols.([]any)
		if !ok {
			return errors.Newf("catalog.tables.%s must be a list of columns", table)
		}
		columns := make([]cdc.Column, 0, len(list))
		for i, c := range list {
			col, ok := c.(map[string]any)
			if !ok {
				return errors.Newf("catalog.tables.%s[%d] must be an object", table, i)
			}
			name, _ := col["name"].(string)
			typ, _ := col["type"].(string)
			if name == "" || typ == "" {
				return errors.Newf("catalog.tables.%s[%d] requires name and type", table, i)
			}
			columns = append(columns, cdc.Column{Name: name, Type: typ})
		}
		out.Tables[table] = columns
	}
	return nil
}

// stringList reads an optional list of strings. A single string is accepted as a one
// element list, like the flattened form older configs used.
func stringList(raw map[string]any, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch v := v.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Newf("%s must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []string{v}, nil
	default:
		return nil, errors.Newf("%s must be a list of strings", key)
	}
}

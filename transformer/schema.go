package transformer

import "context"

// Field types of a FieldSchema
const (
	FieldTypeString = "string"
	FieldTypeBool   = "bool"
	FieldTypeList   = "list"
	FieldTypeObject = "object"
	FieldTypeMap    = "map"
)

// FieldSchema describes one configuration field so a host can validate or prompt for it
type FieldSchema struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Required    bool           `json:"required"`
	Description string         `json:"description,omitempty"`
	Fields      []*FieldSchema `json:"fields,omitempty"`
}

// ───────────────────────────────────────────────────────────────────────────────
//
//	Schema advertises hierarchical fields so the CLI can validate / prompt
//
// ───────────────────────────────────────────────────────────────────────────────
func (p *Plugin) GetSchema(ctx context.Context) ([]*FieldSchema, error) {
	return []*FieldSchema{
		{
			Name:        "input_format",
			Type:        FieldTypeString,
			Description: "Payload format read from the input: realtime, wal2json-v1, wal2json-v2 or rows",
		},
		{
			Name:        "log_level",
			Type:        FieldTypeString,
			Description: "trace, debug, info, warn or error",
		},
		{
			Name:        "fail_fast",
			Type:        FieldTypeBool,
			Description: "Stop on the first message that cannot be read or decoded",
		},
		// ── nested blocks (object type) ───────────────────────────────────
		{
			Name:        "options",
			Type:        FieldTypeObject,
			Description: "Conversion options",
			Fields: []*FieldSchema{
				{Name: "skip_types", Type: FieldTypeList, Description: "Declared types left unconverted"},
				{Name: "precise_numerics", Type: FieldTypeBool, Description: "Decode numeric and money as exact decimals"},
			},
		},
		{
			Name:        "catalog",
			Type:        FieldTypeObject,
			Description: "Column types for payloads that carry none",
			Fields: []*FieldSchema{
				{Name: "provider", Type: FieldTypeString, Description: "postgres or sqlserver"},
				{Name: "connection_string", Type: FieldTypeString, Description: "Required with provider"},
				{Name: "tables", Type: FieldTypeMap, Description: "Table name to list of {name, type} columns"},
			},
		},
		{
			Name:        "metrics",
			Type:        FieldTypeObject,
			Description: "Prometheus endpoint",
			Fields: []*FieldSchema{
				{Name: "listen_address", Type: FieldTypeString, Description: "e.g. :9102"},
			},
		},
	}, nil
}

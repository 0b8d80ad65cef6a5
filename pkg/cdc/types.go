package cdc

// ChangeType represents the type of change detected in a table
type ChangeType string

const (
	// Insert represents a new row being added
	Insert ChangeType = "insert"
	// Update represents a row being modified
	Update ChangeType = "update"
	// Delete represents a row being removed
	Delete ChangeType = "delete"
	// Truncate represents all rows of a table being removed
	Truncate ChangeType = "truncate"
)

// Column declares how to interpret one field of every record of a table.
// Type is the database type name, e.g. "int4", "timestamptz" or "_text" for an array of text.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record maps column names to values. Raw records hold a string or nil per column,
// decoded records hold native Go values.
type Record map[string]any

// Keys returns the column names present in the record, in no particular order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// ChangeEvent represents a change detected in a table
type ChangeEvent struct {
	TableName  string     `json:"table_name"`
	Schema     string     `json:"schema,omitempty"`
	ChangeType ChangeType `json:"change_type"`
	Columns    []Column   `json:"columns,omitempty"`
	Data       Record     `json:"data"`
	OldData    Record     `json:"old_data,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
	LSN        string     `json:"lsn,omitempty"`
}

// QualifiedName returns schema.table, or just the table name when the schema is unknown.
func (e ChangeEvent) QualifiedName() string {
	if e.Schema == "" {
		return e.TableName
	}
	return e.Schema + "." + e.TableName
}

// OutputEnvelope represents the JSON envelope format for stdout output
// This includes the decoded changes plus metadata about the table
type OutputEnvelope struct {
	TableName  string                 `json:"table_name"`
	ServerName string                 `json:"server_name,omitempty"`
	Changes    []ChangeEvent          `json:"changes"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

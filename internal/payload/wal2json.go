package payload

import (

	"github.com/cockroachdb/errors"
	"github.com/jackc/pglogrepl"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// wal2jsonV1Message is a format-version 1 message: one transaction with its changes.
type wal2jsonV1Message struct {
	NextLSN   string `json:"nextlsn"`
	Timestamp string `json:"timestamp"`
	Change    []struct {
		Kind         string   `json:"kind"`
		Schema       string   `json:"schema"`
		Table        string   `json:"table"`
		Columnnames  []string `json:"columnnames"`
		Columntypes  []string `json:"columntypes"`
		Columnvalues []any    `json:"columnvalues"`
		Oldkeys      struct {
			Keynames  []string `json:"keynames"`
			Keytypes  []string `json:"keytypes"`
			Keyvalues []any    `json:"keyvalues"`
		} `json:"oldkeys"`
	} `json:"change"`
}

// wal2jsonV2Message is a format-version 2 message: one tuple per message.
type wal2jsonV2Message struct {
	Action    string            `json:"action"`
	Schema    string            `json:"schema"`
	Table     string            `json:"table"`
	LSN       string            `json:"lsn"`
	Timestamp string            `json:"timestamp"`
	Columns   []wal2jsonV2Value `json:"columns"`
	Identity  []wal2jsonV2Value `json:"identity"`
}

type wal2jsonV2Value struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func decodeWal2JSONV1(line []byte) ([]cdc.ChangeEvent, error) {
	var msg wal2jsonV1Message
	if err := unmarshal(line, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode wal2json message")
	}
	lsn, err := normalizeLSN(msg.NextLSN)
	if err != nil {
		return nil, err
	}

	changes := make([]cdc.ChangeEvent, 0, len(msg.Change))
	for i, ch := range msg.Change {
		changeType, err := parseChangeType(ch.Kind)
		if err != nil {
			// logical messages and other non-row kinds
			continue
		}
		columns, data, err := zipColumns(ch.Columnnames, ch.Columntypes, ch.Columnvalues)
		if err != nil {
			return nil, errors.Wrapf(err, "change %d of %s.%s", i, ch.Schema, ch.Table)
		}
		keyColumns, oldData, err := zipColumns(ch.Oldkeys.Keynames, ch.Oldkeys.Keytypes, ch.Oldkeys.Keyvalues)
		if err != nil {
			return nil, errors.Wrapf(err, "old keys of change %d of %s.%s", i, ch.Schema, ch.Table)
		}
		columns = mergeColumns(columns, keyColumns)
		if changeType == cdc.Delete && data == nil {
			data, oldData = oldData, nil
		}

		changes = append(changes, cdc.ChangeEvent{
			TableName:  ch.Table,
			Schema:     ch.Schema,
			ChangeType: changeType,
			Columns:    columns,
			Data:       data,
			OldData:    oldData,
			Timestamp:  msg.Timestamp,
			LSN:        lsn,
		})
	}
	return changes, nil
}

func decodeWal2JSONV2(line []byte) ([]cdc.ChangeEvent, error) {
	var msg wal2jsonV2Message
	if err := unmarshal(line, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode wal2json message")
	}
	switch msg.Action {
	case "B", "C", "M", "T":
		// transaction boundaries, logical messages and truncates carry no rows
		return nil, nil
	}
	changeType, err := parseChangeType(msg.Action)
	if err != nil {
		return nil, err
	}
	lsn, err := normalizeLSN(msg.LSN)
	if err != nil {
		return nil, err
	}

	columns, data := splitV2Values(msg.Columns)
	keyColumns, oldData := splitV2Values(msg.Identity)
	columns = mergeColumns(columns, keyColumns)

	// a delete only carries the identity of the removed row
	if changeType == cdc.Delete && data == nil {
		data, oldData = oldData, nil
	}

	return []cdc.ChangeEvent{{
		TableName:  msg.Table,
		Schema:     msg.Schema,
		ChangeType: changeType,
		Columns:    columns,
		Data:       data,
		OldData:    oldData,
		Timestamp:  msg.Timestamp,
		LSN:        lsn,
	}}, nil
}

func zipColumns(names, types []string, values []any) ([]cdc.Column, cdc.Record, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	if len(names) != len(types) || len(names) != len(values) {
		return nil, nil, errors.Newf("column names (%d), types (%d) and values (%d) differ in length",
			len(names), len(types), len(values))
	}
	columns := make([]cdc.Column, len(names))
	data := make(cdc.Record, len(names))
	for i, name := range names {
		columns[i] = cdc.Column{Name: name, Type: NormalizeTypeName(types[i])}
		data[name] = values[i]
	}
	return columns, data, nil
}

func splitV2Values(values []wal2jsonV2Value) ([]cdc.Column, cdc.Record) {
	if len(values) == 0 {
		return nil, nil
	}
	columns := make([]cdc.Column, len(values))
	data := make(cdc.Record, len(values))
	for i, v := range values {
		columns[i] = cdc.Column{Name: v.Name, Type: NormalizeTypeName(v.Type)}
		data[v.Name] = v.Value
	}
	return columns, data
}

// mergeColumns appends the columns of extra that base does not declare yet
func mergeColumns(base, extra []cdc.Column) []cdc.Column {
	for _, col := range extra {
		found := false
		for _, b := range base {
			if b.Name == col.Name {
				found = true
				break
			}
		}
		if !found {
			base = append(base, col)
		}
	}
	return base
}

func normalizeLSN(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	lsn, err := pglogrepl.ParseLSN(s)
	if err != nil {
		return "", errors.Wrapf(err, "invalid lsn %q", s)
	}
	return lsn.String(), nil
}

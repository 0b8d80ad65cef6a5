package payload

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// rowChange is the change map emitted by a dstream ingester. It carries raw values but no
// column types; those come from a catalog.
type rowChange struct {
	Metadata struct {
		TableName     string `json:"TableName"`
		OperationType string `json:"OperationType"`
		LSN           string `json:"LSN"`
	} `json:"metadata"`
	Data cdc.Record `json:"data"`
}

// decodeRows accepts a single change map or an array of them
func decodeRows(line []byte) ([]cdc.ChangeEvent, error) {
	var rows []rowChange
	if bytes.HasPrefix(line, []byte("[")) {
		if err := unmarshal(line, &rows); err != nil {
			return nil, errors.Wrap(err, "failed to decode change rows")
		}
	} else {
		var row rowChange
		if err := unmarshal(line, &row); err != nil {
			return nil, errors.Wrap(err, "failed to decode change row")
		}
		rows = append(rows, row)
	}

	changes := make([]cdc.ChangeEvent, 0, len(rows))
	for i, row := range rows {
		if row.Metadata.TableName == "" {
			return nil, errors.Newf("change row %d has no metadata.TableName", i)
		}
		changeType, err := parseChangeType(row.Metadata.OperationType)
		if err != nil {
			return nil, errors.Wrapf(err, "change row %d", i)
		}
		schema, table := "", row.Metadata.TableName
		if s, t, ok := strings.Cut(table, "."); ok {
			schema, table = s, t
		}
		changes = append(changes, cdc.ChangeEvent{
			TableName:  table,
			Schema:     schema,
			ChangeType: changeType,
			Data:       row.Data,
			LSN:        row.Metadata.LSN,
		})
	}
	return changes, nil
}

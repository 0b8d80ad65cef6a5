package payload

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// realtimeMessage is the change payload broadcast by a realtime server: declared columns
// plus the new and old rows with text encoded values.
type realtimeMessage struct {
	Schema          string       `json:"schema"`
	Table           string       `json:"table"`
	Type            string       `json:"type"`
	CommitTimestamp string       `json:"commit_timestamp"`
	Columns         []cdc.Column `json:"columns"`
	Record          cdc.Record   `json:"record"`
	OldRecord       cdc.Record   `json:"old_record"`
}

func decodeRealtime(line []byte) ([]cdc.ChangeEvent, error) {
	var msg realtimeMessage
	if err := unmarshal(line, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode realtime message")
	}
	if msg.Table == "" {
		return nil, errors.New("realtime message has no table")
	}
	changeType, err := parseChangeType(msg.Type)
	if err != nil {
		return nil, err
	}
	return []cdc.ChangeEvent{{
		TableName:  msg.Table,
		Schema:     msg.Schema,
		ChangeType: changeType,
		Columns:    msg.Columns,
		Data:       msg.Record,
		OldData:    msg.OldRecord,
		Timestamp:  msg.CommitTimestamp,
	}}, nil
}

func parseChangeType(s string) (cdc.ChangeType, error) {
	switch strings.ToLower(s) {
	case "insert", "i":
		return cdc.Insert, nil
	case "update", "u":
		return cdc.Update, nil
	case "delete", "d":
		return cdc.Delete, nil
	case "truncate", "t":
		return cdc.Truncate, nil
	default:
		return "", errors.Newf("unknown change type %q", s)
	}
}

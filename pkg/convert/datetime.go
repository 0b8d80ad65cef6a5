package convert

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgtype"
)

// dateTimeLayouts are tried in order once the PostgreSQL timestamptz text codec has
// rejected a value. Time-of-day layouts cover timetz and leave the date at year zero.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"15:04:05.999999999Z07:00:00",
	"15:04:05.999999999Z07:00",
	"15:04:05.999999999Z07",
	"15:04:05.999999999",
}

// toDateTime parses a date-time value. "infinity", "-infinity" and dates outside years
// 0 to 9999 (e.g. BC dates) stay strings because they have no RFC 3339 form.
func toDateTime(raw string) (any, error) {
	s := strings.TrimSpace(raw)

	var tstz pgtype.Timestamptz
	if err := tstz.Scan(s); err == nil && tstz.Valid {
		if tstz.InfinityModifier != pgtype.Finite {
			return raw, nil
		}
		return inRFC3339Range(raw, tstz.Time), nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return inRFC3339Range(raw, t), nil
		}
	}
	return nil, errors.Newf("unrecognized date-time %q", raw)
}

func inRFC3339Range(raw string, t time.Time) any {
	if y := t.Year(); y < 0 || y > 9999 {
		return raw
	}
	return t
}

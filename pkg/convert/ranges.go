package convert

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// rangeOf builds a ConversionFunc for a range type whose bounds are converted by elem.
// The result is an []any holding the lower and upper bound, with nil for an unbounded side,
// or an empty []any for the "empty" range.
func rangeOf(elem ConversionFunc) ConversionFunc {
	return func(raw string) (any, error) {
		bounds, err := parseRangeLiteral(raw)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(bounds))
		for _, b := range bounds {
			if b == nil {
				out = append(out, nil)
				continue
			}
			v, err := elem(*b)
			if err != nil {
				return nil, errors.Wrapf(err, "range bound %q", *b)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// parseRangeLiteral splits "[lower,upper)" into its two bounds. Both PostgreSQL range
// literals and JSON style arrays ("[1,10]", `["a","b"]`) are accepted; whether a bound is
// inclusive is not kept. A missing bound is returned as nil, "empty" yields no bounds.
func parseRangeLiteral(raw string) ([]*string, error) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "empty") {
		return []*string{}, nil
	}
	if len(s) < 2 || (s[0] != '[' && s[0] != '(') || (s[len(s)-1] != ']' && s[len(s)-1] != ')') {
		return nil, errors.Newf("malformed range literal %q", raw)
	}
	body := s[1 : len(s)-1]

	comma := -1
	inQuotes := false
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '"':
			inQuotes = !inQuotes
		case ',':
			if inQuotes {
				continue
			}
			if comma >= 0 {
				return nil, errors.Newf("malformed range literal %q: too many bounds", raw)
			}
			comma = i
		}
	}
	if inQuotes || comma < 0 {
		return nil, errors.Newf("malformed range literal %q", raw)
	}
	return []*string{rangeBound(body[:comma]), rangeBound(body[comma+1:])}, nil
}

// rangeBound unquotes a single bound. An empty, unquoted bound means unbounded.
func rangeBound(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			switch {
			case s[i] == '\\' && i+1 < len(s):
				i++
			case s[i] == '"' && i+1 < len(s) && s[i+1] == '"':
				i++
			}
			b.WriteByte(s[i])
		}
		s = b.String()
	}
	return &s
}

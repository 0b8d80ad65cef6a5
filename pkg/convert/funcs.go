package convert

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var (
	toDateRange = rangeOf(toDateTime)
	toIntRange  = rangeOf(toInt)
)

func noop(raw string) (any, error) {
	return raw, nil
}

// toBoolean decodes the single character boolean encoding. Anything but "t" or "f" is nil.
func toBoolean(raw string) (any, error) {
	switch raw {
	case "t":
		return true, nil
	case "f":
		return false, nil
	default:
		return nil, nil
	}
}

// toFloat keeps "NaN", "Infinity" and "-Infinity" as strings; JSON has no encoding for them.
func toFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return raw, nil
	}
	return f, nil
}

func toDecimal(raw string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return d, nil
}

func toInt(raw string) (any, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func toJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// toTimestampString normalises "2023-01-01 10:00:00" to "2023-01-01T10:00:00".
func toTimestampString(raw string) (any, error) {
	return strings.ReplaceAll(raw, " ", "T"), nil
}

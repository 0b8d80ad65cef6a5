package convert

import (
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Converter dispatches cell values to the conversion registered for their declared type.
// A Converter is immutable once built and safe for concurrent use.
type Converter struct {
	table    map[string]ConversionFunc
	logger   hclog.Logger
	observer Observer
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger that receives degraded-cell diagnostics.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the Observer notified of every conversion outcome.
func WithObserver(o Observer) Option {
	return func(c *Converter) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithConversion registers fn for typeName, replacing any built-in entry.
// A nil fn removes the entry so the type passes through.
func WithConversion(typeName string, fn ConversionFunc) Option {
	return func(c *Converter) {
		if fn == nil {
			delete(c.table, typeName)
			return
		}
		c.table[typeName] = fn
	}
}

// WithPreciseNumerics decodes numeric and money values as decimal.Decimal instead of float64.
func WithPreciseNumerics() Option {
	return func(c *Converter) {
		c.table["numeric"] = toDecimal
		c.table["money"] = toDecimal
	}
}

// New returns a Converter using the built-in type table adjusted by opts.
func New(opts ...Option) *Converter {
	c := &Converter{
		table:    make(map[string]ConversionFunc, len(conversionTable)),
		logger:   hclog.Default(),
		observer: nopObserver{},
	}
	for name, fn := range conversionTable {
		c.table[name] = fn
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertCell converts raw according to typeName. It never fails: nil stays nil, values
// that are not strings are already native and returned as is, and a string that cannot be
// converted is returned unchanged after the failure is logged.
func (c *Converter) ConvertCell(typeName string, raw any) any {
	if raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return raw
	}

	v, err := c.convertCell(typeName, s)
	if err != nil {
		cerr := &ConversionError{Type: typeName, Raw: s, Err: err}
		c.logger.Warn("Could not convert cell", "type", typeName, "value", s, "error", err)
		c.observer.Degraded(cerr)
		return s
	}
	c.observer.Converted(typeName)
	return v
}

func (c *Converter) convertCell(typeName, raw string) (any, error) {
	if elemType, ok := strings.CutPrefix(typeName, arrayPrefix); ok {
		return c.toArray(elemType, raw), nil
	}
	fn, ok := c.table[typeName]
	if !ok {
		return raw, nil
	}
	return fn(raw)
}

// toArray decodes a "{a,b,c}" literal and converts every element as elemType.
// Each element goes back through ConvertCell so a bad element degrades on its own.
func (c *Converter) toArray(elemType, raw string) []any {
	elems := splitArrayLiteral(raw)
	out := make([]any, len(elems))
	for i, elem := range elems {
		out[i] = c.ConvertCell(elemType, elem)
	}
	return out
}

// splitArrayLiteral drops the enclosing braces and splits on every comma.
// Quoting and nesting are not understood.
func splitArrayLiteral(raw string) []string {
	if len(raw) < 2 {
		return nil
	}
	inner := raw[1 : len(raw)-1]
	if inner == "" {
		return nil
	}
	return strings.Split(inner, ",")
}

package convert

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnknownColumn is returned when a record holds a key that no column declares.
var ErrUnknownColumn = errors.New("unknown column")

// ConversionError describes a cell that could not be converted to its declared type.
type ConversionError struct {
	Type string
	Raw  string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("could not convert cell of type %s and value %q: %v", e.Type, e.Raw, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

package convert

// Observer is notified of the outcome of every cell conversion.
// Implementations must be safe for concurrent use.
type Observer interface {
	// Converted is called when a cell was decoded, including passthrough types.
	Converted(typeName string)
	// Degraded is called when a cell failed to convert and its raw string was kept.
	Degraded(err *ConversionError)
}

type nopObserver struct{}

func (nopObserver) Converted(string)          {}
func (nopObserver) Degraded(*ConversionError) {}

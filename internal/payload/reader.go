// Package payload reads newline-delimited CDC messages and turns them into change events
// carrying raw, text encoded column values.
package payload

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// Supported payload formats
const (
	FormatRealtime   = "realtime"
	FormatWal2JSONV1 = "wal2json-v1"
	FormatWal2JSONV2 = "wal2json-v2"
	FormatRows       = "rows"
)

const maxLineSize = 64 * 1024 * 1024

type decodeFunc func(line []byte) ([]cdc.ChangeEvent, error)

var decoders = map[string]decodeFunc{
	FormatRealtime:   decodeRealtime,
	FormatWal2JSONV1: decodeWal2JSONV1,
	FormatWal2JSONV2: decodeWal2JSONV2,
	FormatRows:       decodeRows,
}

// Formats returns the supported format names
func Formats() []string {
	return []string{FormatRealtime, FormatWal2JSONV1, FormatWal2JSONV2, FormatRows}
}

// IsFormat reports whether name is a supported format
func IsFormat(name string) bool {
	return slices.Contains(Formats(), name)
}

// DecodeError reports a single input line that could not be decoded.
// Reading can continue with the next line.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reader yields change batches from newline-delimited JSON messages
type Reader struct {
	decode  decodeFunc
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader decoding r as format
func NewReader(r io.Reader, format string) (*Reader, error) {
	decode, ok := decoders[format]
	if !ok {
		return nil, errors.Newf("unsupported payload format %q", format)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{decode: decode, scanner: scanner}, nil
}

// Next returns the changes of the next message. Blank lines are skipped. It returns io.EOF
// once the input is exhausted and a *DecodeError for a malformed message. A message may
// legitimately produce no changes, e.g. a wal2json transaction boundary.
func (r *Reader) Next(ctx context.Context) ([]cdc.ChangeEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, errors.Wrap(err, "failed to read payload")
			}
			return nil, io.EOF
		}
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		changes, err := r.decode(line)
		if err != nil {
			return nil, &DecodeError{Line: r.line, Err: err}
		}
		return changes, nil
	}
}

// Decode decodes a single message of the given format
func Decode(format string, message []byte) ([]cdc.ChangeEvent, error) {
	decode, ok := decoders[format]
	if !ok {
		return nil, errors.Newf("unsupported payload format %q", format)
	}
	return decode(message)
}

// unmarshal keeps JSON numbers as json.Number so integer values survive untouched
func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

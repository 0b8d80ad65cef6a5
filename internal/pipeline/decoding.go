// Package pipeline holds the change publishers the transformer chains together: one that
// decodes raw change values and one that writes the decoded envelopes out.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/katasec/dstream-transformer/pkg/cdc"
	"github.com/katasec/dstream-transformer/pkg/convert"
)

const defaultLookupTimeout = 30 * time.Second

// DecodingPublisher converts the raw values of every change and forwards the decoded batch
// to the next publisher. Changes that carry no columns are typed through a ColumnSource.
type DecodingPublisher struct {
	ctx           context.Context
	next          cdc.ChangePublisher
	converter     *convert.Converter
	columns       cdc.ColumnSource
	opts          convert.Options
	lookupTimeout time.Duration
}

// NewDecodingPublisher returns a DecodingPublisher. Column lookups are bounded by ctx.
// columns may be nil when every change carries its own column declarations.
func NewDecodingPublisher(ctx context.Context, next cdc.ChangePublisher, converter *convert.Converter, columns cdc.ColumnSource, opts convert.Options) *DecodingPublisher {
	return &DecodingPublisher{
		ctx:           ctx,
		next:          next,
		converter:     converter,
		columns:       columns,
		opts:          opts,
		lookupTimeout: defaultLookupTimeout,
	}
}

// PublishChanges decodes the batch and publishes it to the next publisher. If any change
// cannot be decoded nothing is forwarded and the error is returned.
func (p *DecodingPublisher) PublishChanges(changes []cdc.ChangeEvent) (<-chan bool, error) {
	decoded, err := p.Decode(changes)
	if err != nil {
		return nil, err
	}
	return p.next.PublishChanges(decoded)
}

// Decode returns a decoded copy of changes. The input is not modified.
func (p *DecodingPublisher) Decode(changes []cdc.ChangeEvent) ([]cdc.ChangeEvent, error) {
	decoded := make([]cdc.ChangeEvent, len(changes))
	for i, change := range changes {
		columns, err := p.columnsFor(change)
		if err != nil {
			return nil, err
		}

		out := change
		if change.Data != nil {
			if out.Data, err = p.converter.ConvertRecord(columns, change.Data, p.opts); err != nil {
				return nil, errors.Wrapf(err, "failed to decode change %d of %s", i, change.QualifiedName())
			}
		}
		if change.OldData != nil {
			if out.OldData, err = p.converter.ConvertRecord(columns, change.OldData, p.opts); err != nil {
				return nil, errors.Wrapf(err, "failed to decode old data of change %d of %s", i, change.QualifiedName())
			}
		}
		decoded[i] = out
	}
	return decoded, nil
}

func (p *DecodingPublisher) columnsFor(change cdc.ChangeEvent) ([]cdc.Column, error) {
	if len(change.Columns) > 0 {
		return change.Columns, nil
	}
	if change.Data == nil && change.OldData == nil {
		return nil, nil
	}
	if p.columns == nil {
		return nil, errors.Newf("change of %s carries no columns and no catalog is configured", change.QualifiedName())
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.lookupTimeout)
	defer cancel()
	columns, err := p.columns.Columns(ctx, change.QualifiedName())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to look up columns of %s", change.QualifiedName())
	}
	return columns, nil
}

// Close closes the next publisher
func (p *DecodingPublisher) Close() error {
	return p.next.Close()
}

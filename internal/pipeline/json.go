package pipeline

import (
	"bytes"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

// JSONPublisher writes each batch as OutputEnvelope JSON lines, one envelope per table in
// the order tables first appear in the batch. A batch is written with a single Write, or
// not at all if any envelope fails to encode.
type JSONPublisher struct {
	mu         sync.Mutex
	w          io.Writer
	buf        bytes.Buffer
	serverName string
}

// NewJSONPublisher returns a JSONPublisher writing to w. serverName is copied into every
// envelope and may be empty.
func NewJSONPublisher(w io.Writer, serverName string) *JSONPublisher {
	return &JSONPublisher{w: w, serverName: serverName}
}

// PublishChanges writes the batch
func (p *JSONPublisher) PublishChanges(changes []cdc.ChangeEvent) (<-chan bool, error) {
	done := make(chan bool, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf.Reset()
	enc := json.NewEncoder(&p.buf)
	for _, env := range p.envelopes(changes) {
		if err := enc.Encode(env); err != nil {
			return nil, errors.Wrapf(err, "failed to encode changes of %s", env.TableName)
		}
	}
	if _, err := p.w.Write(p.buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "failed to write changes")
	}

	done <- true
	return done, nil
}

func (p *JSONPublisher) envelopes(changes []cdc.ChangeEvent) []cdc.OutputEnvelope {
	var envs []cdc.OutputEnvelope
	index := make(map[string]int)
	for _, change := range changes {
		name := change.QualifiedName()
		i, ok := index[name]
		if !ok {
			i = len(envs)
			index[name] = i
			envs = append(envs, cdc.OutputEnvelope{TableName: name, ServerName: p.serverName})
		}
		envs[i].Changes = append(envs[i].Changes, change)
	}
	return envs
}

// Close is a no-op; the writer belongs to the caller
func (p *JSONPublisher) Close() error {
	return nil
}

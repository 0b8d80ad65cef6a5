package transformer

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/katasec/dstream-transformer/pkg/cdc"
)

func init() {
	SetLogger(hclog.NewNullLogger())
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func readEnvelopes(t *testing.T, out *bytes.Buffer) []cdc.OutputEnvelope {
	t.Helper()
	var envs []cdc.OutputEnvelope
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var env cdc.OutputEnvelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		envs = append(envs, env)
	}
	return envs
}

const realtimeInsert = `{"schema":"public","table":"users","type":"INSERT","commit_timestamp":"2023-01-01T10:00:00Z",` +
	`"columns":[{"name":"id","type":"int4"},{"name":"active","type":"bool"},{"name":"tags","type":"_text"},{"name":"meta","type":"jsonb"}],` +
	`"record":{"id":"1","active":"t","tags":"{a,b}","meta":"{\"plan\":\"pro\"}"},"old_record":null}`

func TestPlugin_DecodesRealtimeMessages(t *testing.T) {
	var out bytes.Buffer
	reg := prometheus.NewRegistry()
	p := &Plugin{In: strings.NewReader(realtimeInsert + "\n\n" + realtimeInsert + "\n"), Out: &out, Registry: reg}

	require.NoError(t, p.Start(context.Background(), mustStruct(t, map[string]any{})))

	envs := readEnvelopes(t, &out)
	require.Len(t, envs, 2)
	assert.Equal(t, "public.users", envs[0].TableName)
	require.Len(t, envs[0].Changes, 1)

	change := envs[0].Changes[0]
	assert.Equal(t, cdc.Insert, change.ChangeType)
	assert.Equal(t, "2023-01-01T10:00:00Z", change.Timestamp)
	assert.Equal(t, cdc.Record{
		"id":     float64(1),
		"active": true,
		"tags":   []any{"a", "b"},
		"meta":   map[string]any{"plan": "pro"},
	}, change.Data)

	n, err := testutil.GatherAndCount(reg, "dstream_transformer_cells_total")
	require.NoError(t, err)
	// int4, bool, _text and its text elements, jsonb
	assert.Equal(t, 5, n)
}

func TestPlugin_SkipsUnreadableMessages(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("not json\n" + realtimeInsert + "\n")
	p := &Plugin{In: in, Out: &out}

	require.NoError(t, p.Start(context.Background(), mustStruct(t, map[string]any{})))
	assert.Len(t, readEnvelopes(t, &out), 1)
}

func TestPlugin_FailFast(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("not json\n" + realtimeInsert + "\n")
	p := &Plugin{In: in, Out: &out}

	err := p.Start(context.Background(), mustStruct(t, map[string]any{"fail_fast": true}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Empty(t, out.String())
}

func TestPlugin_DropsUndecodableBatches(t *testing.T) {
	unknown := `{"schema":"public","table":"users","type":"INSERT","columns":[{"name":"id","type":"int4"}],"record":{"id":"1","ghost":"x"}}`

	var out bytes.Buffer
	p := &Plugin{In: strings.NewReader(unknown + "\n" + realtimeInsert + "\n"), Out: &out}
	require.NoError(t, p.Start(context.Background(), mustStruct(t, map[string]any{})))
	assert.Len(t, readEnvelopes(t, &out), 1)

	out.Reset()
	p = &Plugin{In: strings.NewReader(unknown + "\n"), Out: &out}
	err := p.Start(context.Background(), mustStruct(t, map[string]any{"fail_fast": true}))
	assert.ErrorContains(t, err, "unknown column")
}

func TestPlugin_RowsWithStaticCatalog(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"metadata":{"TableName":"dbo.Cars","OperationType":"Insert","LSN":"0000002a000001f00003"},` +
		`"data":{"CarId":"12","Price":"19999.99","Sold":"f"}}` + "\n")
	p := &Plugin{In: in, Out: &out}

	cfg := mustStruct(t, map[string]any{
		"input_format": "rows",
		"options":      map[string]any{"precise_numerics": true},
		"catalog": map[string]any{
			"tables": map[string]any{
				"dbo.Cars": []any{
					map[string]any{"name": "CarId", "type": "int4"},
					map[string]any{"name": "Price", "type": "numeric"},
					map[string]any{"name": "Sold", "type": "bool"},
				},
			},
		},
	})
	require.NoError(t, p.Start(context.Background(), cfg))

	envs := readEnvelopes(t, &out)
	require.Len(t, envs, 1)
	assert.Equal(t, "dbo.Cars", envs[0].TableName)
	data := envs[0].Changes[0].Data
	assert.Equal(t, float64(12), data["CarId"])
	assert.Equal(t, "19999.99", data["Price"], "decimals are written as exact strings")
	assert.Equal(t, false, data["Sold"])
}

func TestPlugin_InvalidConfig(t *testing.T) {
	p := &Plugin{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	err := p.Start(context.Background(), mustStruct(t, map[string]any{"input_format": "rows"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transformer config")
}

// blockingReader never returns data, like an idle stdin
type blockingReader struct {
	closed chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.closed
	return 0, assert.AnError
}

func (b *blockingReader) Close() error {
	close(b.closed)
	return nil
}

func TestPlugin_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := &blockingReader{closed: make(chan struct{})}
	p := &Plugin{In: in, Out: &bytes.Buffer{}}

	errc := make(chan error, 1)
	go func() { errc <- p.Start(ctx, mustStruct(t, map[string]any{})) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestGetSchema(t *testing.T) {
	fields, err := (&Plugin{}).GetSchema(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"input_format", "log_level", "fail_fast", "options", "catalog", "metrics"}, names)
}

func TestPlugin_KeepsNonFiniteAndBCValues(t *testing.T) {
	row := func(id int, v, at string) string {
		return `{"schema":"public","table":"m","type":"INSERT","columns":[{"name":"id","type":"int4"},{"name":"v","type":"float8"},{"name":"at","type":"timestamptz"}],` +
			`"record":{"id":"` + strconv.Itoa(id) + `","v":"` + v + `","at":"` + at + `"}}`
	}
	in := strings.Join([]string{
		row(1, "NaN", "2023-01-01 10:00:00+00"),
		row(2, "1.5", "2023-01-01 10:00:00+00"),
		row(3, "Infinity", "0044-03-15 10:00:00+00 BC"),
		row(4, "-Infinity", "2023-01-01 10:00:00+00"),
	}, "\n")

	var out bytes.Buffer
	reg := prometheus.NewRegistry()
	p := &Plugin{In: strings.NewReader(in), Out: &out, Registry: reg}
	require.NoError(t, p.Start(context.Background(), mustStruct(t, map[string]any{})))

	envs := readEnvelopes(t, &out)
	require.Len(t, envs, 4, "every row is published")
	assert.Equal(t, "NaN", envs[0].Changes[0].Data["v"])
	assert.Equal(t, 1.5, envs[1].Changes[0].Data["v"])
	assert.Equal(t, "Infinity", envs[2].Changes[0].Data["v"])
	assert.Equal(t, "0044-03-15 10:00:00+00 BC", envs[2].Changes[0].Data["at"])
	assert.Equal(t, "-Infinity", envs[3].Changes[0].Data["v"])

	expected := `
# HELP dstream_transformer_batches_total Change batches handled, partitioned by status.
# TYPE dstream_transformer_batches_total counter
dstream_transformer_batches_total{status="success"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dstream_transformer_batches_total"))
}

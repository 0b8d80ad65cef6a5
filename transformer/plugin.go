package transformer

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/katasec/dstream-transformer/internal/catalog"
	"github.com/katasec/dstream-transformer/internal/config"
	"github.com/katasec/dstream-transformer/internal/logging"
	"github.com/katasec/dstream-transformer/internal/metrics"
	"github.com/katasec/dstream-transformer/internal/payload"
	"github.com/katasec/dstream-transformer/internal/pipeline"
	"github.com/katasec/dstream-transformer/internal/utils"
	"github.com/katasec/dstream-transformer/pkg/cdc"
	"github.com/katasec/dstream-transformer/pkg/convert"
)

const shutdownTimeout = 5 * time.Second

// Plugin reads raw change messages, decodes their values and writes the decoded changes
// as JSON lines.
type Plugin struct {
	In       io.Reader            // defaults to os.Stdin; closed when Start returns
	Out      io.Writer            // defaults to os.Stdout
	Registry *prometheus.Registry // defaults to a fresh registry
}

// ───────────────────────────────────────────────────────────────────────────────
//
//	Start receives the entire `config { … }` block as google.protobuf.Struct
//
// ───────────────────────────────────────────────────────────────────────────────
func (p *Plugin) Start(ctx context.Context, cfg *structpb.Struct) error {
	log := GetLogger()
	log.Info("Transformer plugin starting execution")

	transformerConfig, err := validateConfig(cfg)
	if err != nil {
		return err
	}
	if transformerConfig.LogLevel != "" {
		level, _ := logging.ParseLevel(transformerConfig.LogLevel)
		log.SetLevel(level)
	}
	log.Debug("[Transformer] Input format", "format", transformerConfig.InputFormat)
	log.Debug("[Transformer] Skip types", "types", transformerConfig.Options.SkipTypes)

	reg := p.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	opts := []convert.Option{convert.WithLogger(log.Named("convert")), convert.WithObserver(m)}
	if transformerConfig.Options.PreciseNumerics {
		opts = append(opts, convert.WithPreciseNumerics())
	}
	converter := convert.New(opts...)

	columns, err := openColumnSource(ctx, transformerConfig.Catalog)
	if err != nil {
		return err
	}
	if columns != nil {
		defer columns.Close()
	}

	in := p.input()
	reader, err := payload.NewReader(in, transformerConfig.InputFormat)
	if err != nil {
		return err
	}

	g, runCtx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(runCtx)
	defer stop()

	publisher := pipeline.NewDecodingPublisher(
		runCtx,
		pipeline.NewJSONPublisher(p.output(), serverName(transformerConfig.Catalog)),
		converter,
		columns,
		transformerConfig.ConvertOptions(),
	)
	defer publisher.Close()

	if addr := transformerConfig.Metrics.ListenAddress; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: shutdownTimeout}
		g.Go(func() error {
			log.Info("Serving metrics", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics server failed")
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// Unblock a pending read once we are told to stop
	g.Go(func() error {
		<-runCtx.Done()
		if closer, ok := in.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil
	})

	g.Go(func() error {
		defer stop()
		return process(runCtx, reader, publisher, m, transformerConfig.FailFast)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Transformer stopped")
	return nil
}

// process moves batches from reader to publisher until the input is exhausted or ctx is done
func process(ctx context.Context, reader *payload.Reader, publisher cdc.ChangePublisher, m *metrics.Metrics, failFast bool) error {
	log := GetLogger()
	for {
		changes, err := reader.Next(ctx)
		if ctx.Err() != nil {
			log.Info("Context cancelled, shutting down transformer")
			return nil
		}
		if errors.Is(err, io.EOF) {
			log.Debug("Input exhausted")
			return nil
		}
		if err != nil {
			var decodeErr *payload.DecodeError
			if !errors.As(err, &decodeErr) || failFast {
				return errors.Wrap(err, "failed to read changes")
			}
			m.BatchDone(err)
			log.Error("Skipping unreadable message", "line", decodeErr.Line, "error", decodeErr.Err)
			continue
		}
		if len(changes) == 0 {
			continue
		}

		err = publish(publisher, changes)
		m.BatchDone(err)
		if err != nil {
			if failFast {
				return err
			}
			log.Error("Dropping change batch", "changes", len(changes), "error", err)
			continue
		}
		for table, n := range countByTable(changes) {
			m.ChangesPublished(table, n)
		}
		log.Debug("Published change batch", "changes", len(changes))
	}
}

func publish(publisher cdc.ChangePublisher, changes []cdc.ChangeEvent) error {
	done, err := publisher.PublishChanges(changes)
	if err != nil {
		return errors.Wrap(err, "failed to publish changes")
	}
	if !<-done {
		return errors.New("publisher did not acknowledge the batch")
	}
	return nil
}

func countByTable(changes []cdc.ChangeEvent) map[string]int {
	counts := make(map[string]int)
	for _, c := range changes {
		counts[c.QualifiedName()]++
	}
	return counts
}

// openColumnSource builds the configured catalog. Statically declared tables take
// precedence over the live provider. It returns nil when nothing is configured.
func openColumnSource(ctx context.Context, cfg config.CatalogConfig) (catalog.Source, error) {
	var sources []catalog.Source
	if len(cfg.Tables) > 0 {
		sources = append(sources, catalog.NewStatic(cfg.Tables, catalog.DefaultSchema(cfg.Provider)))
	}
	if cfg.Provider != "" {
		live, err := catalog.Open(ctx, cfg.Provider, cfg.ConnectionString)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open catalog")
		}
		sources = append(sources, catalog.NewCached(live))
	}

	switch len(sources) {
	case 0:
		return nil, nil
	case 1:
		return sources[0], nil
	default:
		return catalog.NewLayered(sources...), nil
	}
}

// serverName names the database server in output envelopes when a catalog connection
// string identifies one
func serverName(cfg config.CatalogConfig) string {
	if cfg.ConnectionString == "" {
		return ""
	}
	name, err := utils.ExtractServerNameFromConnectionString(cfg.ConnectionString)
	if err != nil {
		GetLogger().Debug("Could not determine server name", "error", err)
		return ""
	}
	return name
}

func (p *Plugin) input() io.Reader {
	if p.In != nil {
		return p.In
	}
	return os.Stdin
}

func (p *Plugin) output() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

// validateConfig validates the plugin configuration and returns the typed Config
func validateConfig(cfg *structpb.Struct) (*config.Config, error) {
	log := GetLogger()
	log.Debug("Struct Config map", "config", cfg)

	transformerConfig, err := config.FromStruct(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transformer config")
	}
	return transformerConfig, nil
}

package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/katasec/dstream-transformer/internal/catalog"
	"github.com/katasec/dstream-transformer/internal/config"
)

var describeFlags struct {
	configPath string
	provider   string
	connString string
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>...",
	Short: "Print the declared columns of tables as the catalog sees them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDescribe,
}

func init() {
	f := describeCmd.Flags()
	f.StringVarP(&describeFlags.configPath, "config", "c", "", "path to a JSON config file with a catalog block")
	f.StringVar(&describeFlags.provider, "provider", "", "catalog provider, overrides the config (postgres or sqlserver)")
	f.StringVar(&describeFlags.connString, "connection-string", "", "catalog connection string, overrides the config")
}

func runDescribe(cmd *cobra.Command, tables []string) error {
	cfg, err := describeCatalogConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var sources []catalog.Source
	if len(cfg.Tables) > 0 {
		sources = append(sources, catalog.NewStatic(cfg.Tables, catalog.DefaultSchema(cfg.Provider)))
	}
	if cfg.Provider != "" {
		live, err := catalog.Open(ctx, cfg.Provider, cfg.ConnectionString)
		if err != nil {
			return err
		}
		sources = append(sources, live)
	}
	if len(sources) == 0 {
		return errors.New("no catalog configured: pass --config or --provider and --connection-string")
	}
	source := catalog.NewLayered(sources...)
	defer source.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, table := range tables {
		columns, err := source.Columns(ctx, table)
		if err != nil {
			return err
		}
		if err := enc.Encode(map[string]any{"table": table, "columns": columns}); err != nil {
			return errors.Wrap(err, "failed to write columns")
		}
	}
	return nil
}

func describeCatalogConfig() (config.CatalogConfig, error) {
	var cfg config.CatalogConfig
	if describeFlags.configPath != "" {
		s, err := config.LoadFile(describeFlags.configPath)
		if err != nil {
			return cfg, err
		}
		full, err := config.FromStruct(s)
		if err != nil {
			return cfg, err
		}
		cfg = full.Catalog
	}
	if describeFlags.provider != "" {
		cfg.Provider = describeFlags.provider
	}
	if describeFlags.connString != "" {
		cfg.ConnectionString = describeFlags.connString
	}
	if cfg.Provider != "" && cfg.ConnectionString == "" {
		return cfg, errors.New("--connection-string is required with a provider")
	}
	return cfg, nil
}

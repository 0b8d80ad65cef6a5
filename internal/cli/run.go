package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/katasec/dstream-transformer/internal/config"
	"github.com/katasec/dstream-transformer/transformer"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Decode changes from stdin to stdout",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to a JSON config file")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfigStruct(runConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &transformer.Plugin{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	return p.Start(ctx, cfg)
}

// loadConfigStruct reads the config file, or returns an empty config when path is empty
func loadConfigStruct(path string) (*structpb.Struct, error) {
	if path == "" {
		return &structpb.Struct{}, nil
	}
	return config.LoadFile(path)
}

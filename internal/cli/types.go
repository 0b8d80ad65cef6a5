package cli

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/katasec/dstream-transformer/pkg/convert"
	"github.com/katasec/dstream-transformer/transformer"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the database types that are converted",
	Long: `List the database types that are converted. Any other type passes through unchanged,
and a leading underscore marks an array of the named element type.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range convert.TypeNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the config schema as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fields, err := (&transformer.Plugin{}).GetSchema(context.Background())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	},
}

package cli

import (
	"github.com/blockrt/blockrt/internal/engine"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// metadataCmd exports every registered block's schema, the way the
// teacher's schema command exports the workflow DSL's JSON schema.
// Grounded on internal/cli/schema.go's output-format switch, rebuilt
// around the Block Registry's Export (invopop/jsonschema +
// stoewer/go-strcase) instead of the DSL's ast.NewSchema.
var metadataSchema bool

var metadataCmd = &cobra.Command{
	Use:    "metadata",
	Short:  "Export block metadata (arguments, visuals, schema)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(engine.DefaultConfig(), log.Logger)
		if err != nil {
			return err
		}

		if metadataSchema {
			return style.PrintJSON(cmd.OutOrStdout(), registry.Schema())
		}

		meta, err := registry.Export(eng.Registry())
		if err != nil {
			style.Error(cmd.OutOrStderr(), err.Error())
			return err
		}

		switch viper.GetString("output") {
		case "yaml":
			return style.PrintYAML(cmd.OutOrStdout(), meta)
		default:
			return style.PrintJSON(cmd.OutOrStdout(), meta)
		}
	},
}

func init() {
	rootCmd.AddCommand(metadataCmd)
	metadataCmd.Flags().BoolVar(&metadataSchema, "schema", false, "print the JSON schema of the metadata export shape instead of the export itself")
}

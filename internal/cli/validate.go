package cli

import (
	"os"

	"github.com/blockrt/blockrt/internal/engine"
	"github.com/blockrt/blockrt/internal/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// validateCmd checks that a block-XML program parses and that every
// referenced block type is registered, without running it. Grounded on
// the teacher's internal/cli/validate.go parse-without-run shape,
// reduced to the loader's own error reporting since the block registry
// has no separate static analysis pass the way the workflow DSL does.
var validateCmd = &cobra.Command{
	Use:   "validate [program.xml]",
	Short: "Check that a block program loads without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xmlSource, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		eng, err := engine.New(engine.DefaultConfig(), log.Logger)
		if err != nil {
			return err
		}
		if err := eng.LoadProgram(string(xmlSource)); err != nil {
			style.Error(cmd.OutOrStderr(), err.Error())
			return err
		}
		style.Success(cmd.OutOrStdout(), "program is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/blockrt/blockrt/internal/engine"
	"github.com/blockrt/blockrt/internal/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	stepMode       bool
	iterationLimit int
	noPlugins      bool
	eagerStart     bool
)

// runCmd loads a block-XML program and drives it to completion, the CLI
// equivalent of the engine's Start+Complete pair. Grounded on the
// teacher's internal/cli/run.go Run handler shape (flag parsing,
// outputFormat switch, printExecutionSummary), adapted from a workflow
// runner's inputs/outputs to a program's variable store and highlight
// trace.
var runCmd = &cobra.Command{
	Use:   "run [program.xml]",
	Short: "Run a block program to completion",
	Long: `Run loads a block-XML program, starts every registered entry point, and
drives the scheduler to exhaustion (or its iteration limit).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProgram(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&stepMode, "step", false, "print the block trace as each task is stepped instead of running silently to completion")
	runCmd.Flags().IntVar(&iterationLimit, "iteration-limit", 100_000, "maximum scheduler steps before aborting")
	runCmd.Flags().BoolVar(&noPlugins, "no-plugins", false, "do not acquire the engine's registered plugin contexts on start (the CLI registers none)")
	runCmd.Flags().BoolVar(&eagerStart, "eager", false, "run each starting block's own continuations eagerly instead of suspending them to the scheduler")
}

func runProgram(cmd *cobra.Command, path string) error {
	xmlSource, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := engine.DefaultConfig()
	cfg.IterationLimit = iterationLimit
	cfg.EnablePluginContext = !noPlugins

	eng, err := engine.New(cfg, log.Logger)
	if err != nil {
		return err
	}

	if err := eng.LoadProgram(string(xmlSource)); err != nil {
		style.Error(cmd.OutOrStderr(), err.Error())
		return err
	}

	start := time.Now()
	if err := eng.Start(eagerStart); err != nil {
		style.Error(cmd.OutOrStderr(), err.Error())
		return err
	}

	if stepMode {
		err = runStepwise(cmd, eng)
	} else {
		manager := style.NewSpinnerManager(cmd.OutOrStdout())
		showSpinner := !viper.GetBool("quiet") && viper.GetString("output") == "text"
		var sp style.Spinner
		if showSpinner {
			sp = manager.Start()
			sp.SetSuffix(" running program...")
			sp.Start()
		}
		err = eng.Complete()
		if showSpinner {
			sp.Stop()
		}
	}

	printRunSummary(cmd.OutOrStdout(), eng, time.Since(start), err)
	if err != nil {
		return err
	}
	return nil
}

func runStepwise(cmd *cobra.Command, eng *engine.Engine) error {
	w := cmd.OutOrStdout()
	for {
		status := eng.Status()
		if status.QueueLength == 0 {
			return nil
		}
		for _, id := range status.Highlights {
			fmt.Fprintf(w, "%s %s\n", style.InfoIcon(), style.FormatBlockID(id))
		}
		if err := eng.Step(); err != nil {
			return err
		}
	}
}

func printRunSummary(w io.Writer, eng *engine.Engine, elapsed time.Duration, runErr error) {
	outputFormat := viper.GetString("output")
	status := eng.Status()

	switch outputFormat {
	case "json":
		_ = style.PrintJSON(w, status)
		return
	case "yaml":
		_ = style.PrintYAML(w, status)
		return
	}

	if viper.GetBool("quiet") {
		return
	}

	if runErr == nil {
		fmt.Fprintf(w, "%s program completed in %.2fs\n", style.SuccessIcon(), elapsed.Seconds())
	} else {
		fmt.Fprintf(w, "%s program stopped: %v\n", style.ErrorIcon(), runErr)
	}

	if len(status.Variables) == 0 {
		return
	}
	names := make([]string, 0, len(status.Variables))
	byName := make(map[string]string, len(status.Variables))
	for _, entry := range status.Variables {
		names = append(names, entry.Name)
		byName[entry.Name] = fmt.Sprintf("%v", entry.Value)
	}
	sort.Strings(names)
	fmt.Fprintln(w)
	for _, name := range names {
		style.Muted(w, fmt.Sprintf("  %s = %s", name, byName[name]))
	}
}

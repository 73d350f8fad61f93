package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobib/autobib/internal/config"
	"github.com/autobib/autobib/internal/logging"
)

var logger *logging.Logger
var debugSink *logging.DebugSink

var rootCmd = &cobra.Command{
	Use:   "autobib",
	Short: "Local bibliographic data manager",
	Long: `autobib resolves citation keys (aliases or provider:sub_id
remote identifiers) against a local, transactional, versioned store,
fetching missing records from remote providers and emitting BibTeX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		var noColor *bool
		if cmd.Flags().Changed("no-color") {
			v, _ := cmd.Flags().GetBool("no-color")
			disabled := v
			noColor = &disabled
		}
		logger = logging.New(os.Stderr, invertColorFlag(noColor))

		if dbFlag, _ := cmd.Flags().GetString("db"); dbFlag != "" {
			config.Set("db", dbFlag)
		}
		if ro, _ := cmd.Flags().GetBool("read-only"); ro {
			config.Set("read-only", true)
		}

		debugSink = logging.NewDebugSink(filepath.Dir(config.DBPath()))
		debugSink.Printf("%s %s", cmd.Name(), strings.Join(os.Args[1:], " "))
	},
}

// invertColorFlag turns a "--no-color was set to X" pointer into the
// "use color" pointer logging.New expects.
func invertColorFlag(noColor *bool) *bool {
	if noColor == nil {
		return nil
	}
	v := !*noColor
	return &v
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "path to the autobib database (overrides config)")
	rootCmd.PersistentFlags().Bool("read-only", false, "open the database in read-only mode (spec.md §5)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

// Execute runs the command tree and returns the process exit code:
// the cobra error code if the command itself failed, otherwise the
// logger's accumulated error-level exit code (spec.md §6.5: "the
// process exit status is non-zero if any error-level message was
// emitted during the run").
func Execute() int {
	rootCmd.Version = Version
	defer func() {
		if debugSink != nil {
			debugSink.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if debugSink != nil {
			debugSink.Printf("error: %v", err)
		}
		return 1
	}
	if logger != nil {
		return logger.ExitCode()
	}
	return 0
}

// runArgs executes the command tree against an explicit argument
// vector instead of os.Args, resetting the flags cobra mutates so the
// same process can drive the CLI repeatedly. Used by the rsc.io/script
// harness, which runs many "autobib ..." invocations per test process.
func runArgs(args []string) int {
	rootCmd.SetArgs(args)
	for _, f := range []string{"db", "read-only", "no-color"} {
		_ = rootCmd.PersistentFlags().Set(f, rootCmd.PersistentFlags().Lookup(f).DefValue)
	}
	return Execute()
}

// ErrReadOnlyCommand builds the error a mutating command returns when it
// runs against a read-only store; its message names cmdName (spec.md §7:
// "Read-only-mode rejection emits a specific message naming the
// offending command/flag").
func ErrReadOnlyCommand(cmdName string) error {
	return fmt.Errorf("%s: refusing to run a mutating command against a --read-only store", cmdName)
}

// Command vpa runs actuarial valuations of BD and CD retirement plans from a
// YAML participant file and manages the decrement tables they use.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// cliOptions holds the flags shared by every subcommand.
type cliOptions struct {
	verbose   bool
	tablesDir string
	tablesDB  string
	logger    *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{logger: slog.Default()}
	root := &cobra.Command{
		Use:   "vpa",
		Short: "Actuarial present value engine for BD and CD retirement plans",
		Long: `vpa projects salaries, contributions and benefits month by month,
weights them by multi-decrement survival and discounts them to present
values (VPA). It reports reserves, deficit or surplus, sustainable benefits
and can solve for the contribution rate that balances a plan.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVar(&opts.tablesDir, "tables-dir", "", "Directory of <CODE>.yaml decrement tables (overrides engine.tables_dir)")
	root.PersistentFlags().StringVar(&opts.tablesDB, "tables-db", "", "SQLite database of imported decrement tables (overrides engine.tables_db)")

	root.AddCommand(newComputeCmd(opts))
	root.AddCommand(newSolveCmd(opts))
	root.AddCommand(newTablesCmd(opts))
	root.AddCommand(newExampleCmd())
	return root
}

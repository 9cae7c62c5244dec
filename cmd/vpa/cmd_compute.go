package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rpgo/actuarial-engine/internal/calculation"
	"github.com/rpgo/actuarial-engine/internal/config"
	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/output"
)

// reportFlags are shared by compute and solve.
type reportFlags struct {
	configFile string
	format     string
	outFile    string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Participant configuration YAML file")
	cmd.Flags().StringVarP(&f.format, "format", "f", "console", "Output format: console, json, csv, csv-monthly")
	cmd.Flags().StringVarP(&f.outFile, "output", "o", "", "Write the report to this file instead of stdout")
	_ = cmd.MarkFlagRequired("config")
}

func newComputeCmd(opts *cliOptions) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Value a participant's plan",
		Long: `Loads the participant configuration, composes the survival curve from the
configured decrement tables, projects monthly cash flows and reports present
values, reserve, deficit or surplus and the sustainable benefit.

If the configuration sets solve_for: CONTRIBUTION_RATE the balancing rate is
searched first, as with the solve command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd.Context(), opts, flags, cmd.OutOrStdout(), false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newSolveCmd(opts *cliOptions) *cobra.Command {
	flags := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the contribution rate that balances the plan",
		Long: `Searches contribution rates in [0%, 100%] by bisection. BD plans look for a
zero deficit; CD plans look for the rate whose estimated benefit matches
target_benefit. The solver status (CONVERGED, MAX_ITERS_REACHED, NO_BRACKET or
DEGENERATE) is included in the report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd.Context(), opts, flags, cmd.OutOrStdout(), true)
		},
	}
	flags.register(cmd)
	return cmd
}

func runValuation(ctx context.Context, opts *cliOptions, flags *reportFlags, stdout io.Writer, solve bool) error {
	formatter := output.GetFormatterByName(flags.format)
	if formatter == nil {
		// GenerateReport builds the error listing the supported formats.
		return output.GenerateReport(io.Discard, nil, flags.format)
	}

	cfg, err := config.NewInputParser().LoadFromFile(flags.configFile)
	if err != nil {
		return err
	}
	provider, closeFn, err := opts.provider(cfg.Engine)
	if err != nil {
		return err
	}
	defer closeFn()

	engine := calculation.NewEngine(provider, cfg.Engine)
	engine.SetLogger(calculation.NewSlogLogger(opts.logger))

	var res *domain.ActuarialResult
	if solve {
		res, err = engine.SolveContributionRate(ctx, cfg.Participant)
	} else {
		res, err = engine.Compute(ctx, cfg.Participant)
	}
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}
	res.Assumptions = output.GenerateAssumptions(cfg.Participant)

	if flags.outFile != "" {
		if err := output.WriteFormatted(formatter, res, flags.outFile); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		opts.logger.Info("report written", "file", flags.outFile, "format", formatter.Name())
		return nil
	}
	return output.GenerateReport(stdout, res, formatter.Name())
}

func newExampleCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write an example participant configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			if outFile == "" {
				data, err := parser.MarshalExample()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := parser.WriteExample(outFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Destination file (stdout when empty)")
	return cmd
}

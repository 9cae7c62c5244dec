package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/store/sqlite"
	"github.com/rpgo/actuarial-engine/internal/tables"
)

func newTablesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List, inspect and import decrement tables",
	}
	cmd.AddCommand(newTablesListCmd(opts))
	cmd.AddCommand(newTablesShowCmd(opts))
	cmd.AddCommand(newTablesImportCmd(opts))
	return cmd
}

func newTablesListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the table codes available from every configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, closeFn, err := opts.tableSources(domain.EngineSettings{})
			if err != nil {
				return err
			}
			defer closeFn()

			codes, err := chain.Codes(cmd.Context())
			if err != nil {
				return err
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
}

func newTablesShowCmd(opts *cliOptions) *cobra.Command {
	var (
		gender      string
		fromAge     int
		toAge       int
		aggravation float64
	)
	cmd := &cobra.Command{
		Use:   "show CODE",
		Short: "Print the annual rates of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closeFn, err := opts.provider(domain.EngineSettings{})
			if err != nil {
				return err
			}
			defer closeFn()

			g := domain.Gender(strings.ToUpper(gender))
			t, err := provider.GetAdjusted(cmd.Context(), args[0], g, aggravation)
			if err != nil {
				return err
			}
			if toAge < 0 || toAge > t.MaxAge() {
				toAge = t.MaxAge()
			}
			if fromAge < t.MinAge {
				fromAge = t.MinAge
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) ages %d-%d, mean q %.6f\n", t.Code, t.Gender, t.MinAge, t.MaxAge(), t.Mean())
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Age\tq\t")
			for age := fromAge; age <= toAge; age++ {
				fmt.Fprintf(tw, "%d\t%.8f\t\n", age, t.Rate(age))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&gender, "gender", "g", string(domain.GenderUnisex), "MALE, FEMALE or UNISEX")
	cmd.Flags().IntVar(&fromAge, "from-age", 0, "First age to print")
	cmd.Flags().IntVar(&toAge, "to-age", -1, "Last age to print (default: end of table)")
	cmd.Flags().Float64Var(&aggravation, "aggravation", 0, "Adjustment in percent: positive smooths, negative aggravates")
	return cmd
}

func newTablesImportCmd(opts *cliOptions) *cobra.Command {
	var file, db string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a YAML table file into the SQLite table store",
		Long: `Reads a table file in the tables directory layout
({code, kind, min_age, rates: {male: [...], female: [...]}}) and replaces
every gender variant of that code in the database given by --db.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if db == "" {
				db = opts.tablesDB
			}
			if db == "" {
				return fmt.Errorf("--db or --tables-db is required for import")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", file, err)
			}
			tf, err := tables.ParseTableFile(data)
			if err != nil {
				return err
			}
			store, err := sqlite.New(db)
			if err != nil {
				return fmt.Errorf("failed to open tables database: %w", err)
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), tf)
			if err != nil {
				return err
			}
			opts.logger.Info("tables imported", "code", tf.Code, "variants", n, "db", db)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d table(s) for %s\n", n, tf.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Table YAML file to import")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database to import into (default: --tables-db)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

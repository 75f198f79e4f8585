package main

import (
	"cardiostent/internal/app"
	"cardiostent/internal/config"
	"cardiostent/internal/logging"
	"cardiostent/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dataFile   string
	policy     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "surveyctl",
		Short: "Inspect and export CardioStent survey data",
		Long: `surveyctl reads the same record store as the server and prints the
cohort analytics or the flat CSV export.

The store is selected by the server configuration (CONFIG_PATH, STORE_DRIVER,
DATA_FILE, MONGO_URI); --data-file overrides the file store location.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.dataFile, "data-file", "", "file store path (implies the file driver)")
	root.PersistentFlags().StringVar(&opts.policy, "missing-scores", "", "missing score policy: exclude or zero")

	root.AddCommand(newSummaryCmd(opts), newExportCmd(opts))
	return root
}

// open loads config with flag overrides applied and opens the store
func (o *options) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataFile != "" {
		cfg.Store.Driver = "file"
		cfg.Store.DataFile = o.dataFile
	}
	if o.policy != "" {
		cfg.Analytics.MissingScorePolicy = model.MissingScorePolicy(o.policy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// keep stdout clean for the command output
	logger, err := logging.New("warn", "console")
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logger)
}

func newSummaryCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print both cohort aggregation tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			analytics, err := a.Analytics.Analytics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(analytics)
			}
			return printSummary(out, analytics)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func printSummary(out io.Writer, a *model.Analytics) error {
	fmt.Fprintf(out, "Total Captured Profiles: %d\n", a.Total)

	for _, t := range []model.CohortTable{a.Patient, a.IC} {
		fmt.Fprintf(out, "\n%s (%d records)\n", t.Title, t.Records)
		if t.Records == 0 {
			fmt.Fprintln(out, "  not enough data yet")
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\tN\tEVIDENCE\tEXPERIENCE\tECONOMICS\tSTRATEGY\n", t.CategoryName)
		for _, row := range t.Rows {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\t%s\n",
				row.Label, row.Count,
				avgCell(row, model.ScoreEvidence),
				avgCell(row, model.ScoreExperience),
				avgCell(row, model.ScoreEconomics),
				row.Strategy.Label,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func avgCell(row model.GroupRow, f model.ScoreField) string {
	v, ok := row.Average(f)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func newExportCmd(opts *options) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the CSV export to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, n, err := a.NewExportService(nil).CSV(cmd.Context())
			if errors.Is(err, model.ErrNotFound) {
				return errors.New("no data found")
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", n, outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/report"
	"github.com/sells-group/geo-cli/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect download history",
	Long:  "Commands for listing and viewing recorded fetch runs. Requires store.driver sqlite or postgres.",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fetch runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("history"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		accession, _ := cmd.Flags().GetString("accession")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Accession: accession,
			Status:    model.RunStatus(status),
			Limit:     limit,
		})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.") //nolint:errcheck
			return nil
		}
		return report.RunTable(cmd.OutOrStdout(), runs)
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("history"); err != nil {
			return err
		}

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		if format != report.FormatText {
			return report.Dump(cmd.OutOrStdout(), format, run)
		}
		return printRun(cmd.OutOrStdout(), run)
	},
}

// printRun writes the text form of a run followed by its file table.
func printRun(w io.Writer, run *model.Run) error {
	p := report.NewPrinter(w, colorOutput())
	p.Field("Run", run.ID)
	p.Field("Accession", run.Accession)
	p.Field("Status", string(run.Status))
	if run.Title != "" {
		p.Field("Title", run.Title)
	}
	p.Field("Samples", strconv.Itoa(run.Samples))
	p.Field("Started", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	p.Field("Finished", run.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Error != "" {
		p.Field("Error", fmt.Sprintf("[%s] %s", run.ErrorCategory, run.Error))
	}

	if len(run.Files) == 0 {
		return nil
	}
	return report.FileTable(w, run.Files)
}

func init() {
	historyListCmd.Flags().String("accession", "", "filter by accession")
	historyListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	historyListCmd.Flags().Int("limit", 20, "max number of runs to display")

	historyShowCmd.Flags().String("format", "text", "output format: text, json or yaml")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

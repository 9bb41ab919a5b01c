package main

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-cli/internal/geo"
	"github.com/sells-group/geo-cli/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show [accession]",
	Short: "Print series metadata and a sample table without downloading",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("show"); err != nil {
			return err
		}

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		accession := cfg.Geo.Accession
		if len(args) == 1 {
			accession = args[0]
		}

		c, err := newClients(cfg, nil)
		if err != nil {
			return err
		}

		series, err := c.series.GetSeries(ctx, accession)
		if err != nil {
			return eris.Wrapf(err, "show %s", accession)
		}

		if format != report.FormatText {
			return report.Dump(cmd.OutOrStdout(), format, series)
		}
		return printSeries(cmd.OutOrStdout(), series)
	},
}

// printSeries writes the text form of a series: the headline fields, the
// supplementary file list, then one table row per sample.
func printSeries(w io.Writer, series *geo.Series) error {
	p := report.NewPrinter(w, colorOutput())

	p.Field("Accession", series.Name)
	for _, f := range []struct{ label, key string }{
		{"Title", geo.KeyTitle},
		{"Summary", geo.KeySummary},
		{"Overall design", geo.KeyOverallDesign},
	} {
		p.Field(f.label, strings.Join(series.Metadata.Values(f.key), "\n"))
	}
	for _, u := range series.Metadata.Values(geo.KeySupplementaryFile) {
		p.Field("Supplementary file", u)
	}
	for _, gpl := range series.Platforms {
		p.Field("Platform", gpl.Name)
	}

	return report.SampleTable(w, series.Samples)
}

func init() {
	showCmd.Flags().String("format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(showCmd)
}

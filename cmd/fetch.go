package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/geo"
	"github.com/sells-group/geo-cli/internal/report"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [accession]",
	Short: "Print series metadata and download its FTP supplementary files",
	Long: `Fetches the family SOFT file for a GEO series, prints its title, summary and
overall design, lists every sample, then downloads each ftp:// supplementary
file into the destination directory. Other URL schemes are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		accession := cfg.Geo.Accession
		if len(args) == 1 {
			accession = args[0]
		}
		dest, _ := cmd.Flags().GetString("dest")
		if dest == "" {
			dest = cfg.Geo.DestDir
		}
		metadataOnly, _ := cmd.Flags().GetBool("metadata-only")
		keepGoing, _ := cmd.Flags().GetBool("keep-going")

		c, err := newClients(cfg, progressWriter(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		var recorder geo.Recorder
		if st != nil {
			defer st.Close() //nolint:errcheck
			recorder = st
		}

		d := geo.NewDownloader(c.series, c.ftp,
			report.NewPrinter(cmd.OutOrStdout(), colorOutput()),
			recorder,
			geo.DownloaderOptions{
				DestDir:      dest,
				MetadataOnly: metadataOnly,
				KeepGoing:    keepGoing,
			},
		)

		res, err := d.Run(ctx, accession)
		if err != nil {
			return err
		}

		zap.L().Info("fetch complete",
			zap.String("accession", res.Accession),
			zap.Int("samples", len(res.Samples)),
			zap.Int("downloaded", len(res.Files)),
			zap.Int("skipped", len(res.Skipped)),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("dest", "", "directory for downloaded files (default geo.dest_dir)")
	fetchCmd.Flags().Bool("metadata-only", false, "print metadata and file names without downloading")
	fetchCmd.Flags().Bool("keep-going", false, "attempt every supplementary file even after a failure")
	rootCmd.AddCommand(fetchCmd)
}

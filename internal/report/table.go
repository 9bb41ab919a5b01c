package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-cli/internal/geo"
	"github.com/sells-group/geo-cli/internal/model"
)

const maxCellWidth = 60

// SampleTable renders one row per sample: name, title, source and organism.
func SampleTable(w io.Writer, samples []*geo.Sample) error {
	table := tablewriter.NewWriter(w)
	table.Header("Sample", "Title", "Source", "Organism")
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
		cfg.Row = tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		}
	})

	for _, gsm := range samples {
		if err := table.Append([]string{
			gsm.Name,
			cell(gsm.Metadata, "title"),
			cell(gsm.Metadata, "source_name_ch1"),
			cell(gsm.Metadata, "organism_ch1"),
		}); err != nil {
			return eris.Wrapf(err, "report: append row %s", gsm.Name)
		}
	}

	if err := table.Render(); err != nil {
		return eris.Wrap(err, "report: render sample table")
	}
	return nil
}

func cell(md geo.Metadata, key string) string {
	v := strings.Join(md.Values(key), "; ")
	if r := []rune(v); len(r) > maxCellWidth {
		v = string(r[:maxCellWidth-3]) + "..."
	}
	return v
}

// RunTable renders a history listing.
func RunTable(w io.Writer, runs []model.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Accession", "Status", "Samples", "Files", "Created", "Error")

	for _, r := range runs {
		if err := table.Append([]string{
			r.ID,
			r.Accession,
			string(r.Status),
			strconv.Itoa(r.Samples),
			strconv.Itoa(r.FileCount),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(r.ErrorCategory),
		}); err != nil {
			return eris.Wrapf(err, "report: append run %s", r.ID)
		}
	}

	if err := table.Render(); err != nil {
		return eris.Wrap(err, "report: render run table")
	}
	return nil
}

// FileTable renders the per-file records of one run.
func FileTable(w io.Writer, files []model.FileRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header("File", "Status", "Size", "Path", "Error")

	for _, f := range files {
		if err := table.Append([]string{
			f.Filename,
			string(f.Status),
			FormatSize(f.Bytes),
			f.Path,
			f.Error,
		}); err != nil {
			return eris.Wrapf(err, "report: append file %s", f.Filename)
		}
	}

	if err := table.Render(); err != nil {
		return eris.Wrap(err, "report: render file table")
	}
	return nil
}

// FormatSize formats a byte count in human-readable form.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

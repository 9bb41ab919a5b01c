package geo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/model"
)

// ErrMissingField is returned when a series lacks a required metadata key.
var ErrMissingField = eris.New("missing metadata field")

// Metadata keys read from a series.
const (
	KeyTitle             = "title"
	KeySummary           = "summary"
	KeyOverallDesign     = "overall_design"
	KeySupplementaryFile = "supplementary_file"
)

// ftpScheme is the only prefix that triggers a download.
const ftpScheme = "ftp://"

// FileFetcher writes a remote file to a local path.
type FileFetcher interface {
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Reporter receives the user-facing lines of a run.
type Reporter interface {
	Field(label, value string)
	Sample(name string)
	Downloading(filename string)
}

// Recorder persists run history.
type Recorder interface {
	CreateRun(ctx context.Context, accession string) (*model.Run, error)
	AddFile(ctx context.Context, runID string, rec model.FileRecord) error
	FinishRun(ctx context.Context, runID string, summary model.RunSummary) error
}

// DownloaderOptions controls a Downloader.
type DownloaderOptions struct {
	// DestDir receives downloaded files. Defaults to the working directory.
	DestDir string
	// MetadataOnly prints metadata and lists files without downloading.
	MetadataOnly bool
	// KeepGoing attempts every file even after a failure.
	KeepGoing bool
}

// Result summarises a completed run.
type Result struct {
	Accession string             `json:"accession"`
	Title     string             `json:"title"`
	Samples   []string           `json:"samples"`
	Files     []model.FileRecord `json:"files"`
	Skipped   []string           `json:"skipped"`
}

// Downloader fetches a series' metadata, reports it, and downloads its FTP
// supplementary files one after another.
type Downloader struct {
	source   SeriesSource
	files    FileFetcher
	reporter Reporter
	recorder Recorder
	opts     DownloaderOptions
	now      func() time.Time
}

// NewDownloader creates a Downloader. recorder may be nil.
func NewDownloader(source SeriesSource, files FileFetcher, reporter Reporter, recorder Recorder, opts DownloaderOptions) *Downloader {
	if opts.DestDir == "" {
		opts.DestDir = "."
	}
	return &Downloader{
		source:   source,
		files:    files,
		reporter: reporter,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
	}
}

// SupplementaryFilename returns the final "/"-separated segment of a URL.
func SupplementaryFilename(fileURL string) string {
	return fileURL[strings.LastIndex(fileURL, "/")+1:]
}

// IsFTP reports whether fileURL uses the ftp:// scheme, matched literally.
func IsFTP(fileURL string) bool {
	return strings.HasPrefix(fileURL, ftpScheme)
}

// Run executes the fetch sequence for one accession.
func (d *Downloader) Run(ctx context.Context, accession string) (*Result, error) {
	runID := d.createRun(ctx, accession)
	summary := model.RunSummary{Status: model.RunStatusFailed}
	defer func() { d.finishRun(ctx, runID, summary) }()

	fail := func(err error) (*Result, error) {
		summary.ErrorCategory = model.ClassifyError(err)
		summary.Error = err.Error()
		return nil, err
	}

	series, err := d.source.GetSeries(ctx, accession)
	if err != nil {
		if errors.Is(err, ErrInvalidAccession) || errors.Is(err, ErrUnsupportedAccession) || errors.Is(err, ErrNoSeries) {
			err = &model.MetadataError{Err: err}
		}
		return fail(eris.Wrapf(err, "fetch %s", accession))
	}

	res := &Result{Accession: series.Name}

	fields := []struct{ label, key string }{
		{"Title", KeyTitle},
		{"Summary", KeySummary},
		{"Overall design", KeyOverallDesign},
	}
	for _, f := range fields {
		v, ok := series.Metadata.First(f.key)
		if !ok {
			return fail(&model.MetadataError{Err: eris.Wrapf(ErrMissingField, "%s: %q", series.Name, f.key)})
		}
		d.reporter.Field(f.label, v)
		if f.key == KeyTitle {
			res.Title = v
			summary.Title = v
		}
	}

	for _, gsm := range series.Samples {
		d.reporter.Sample(gsm.Name)
		res.Samples = append(res.Samples, gsm.Name)
	}
	summary.Samples = len(res.Samples)

	var failures []error
	for _, fileURL := range series.Metadata.Values(KeySupplementaryFile) {
		if !IsFTP(fileURL) {
			zap.L().Debug("skipping non-ftp supplementary file", zap.String("url", fileURL))
			res.Skipped = append(res.Skipped, fileURL)
			d.addFile(ctx, runID, model.FileRecord{
				URL:        fileURL,
				Filename:   SupplementaryFilename(fileURL),
				Status:     model.FileStatusSkipped,
				StartedAt:  d.now().UTC(),
				FinishedAt: d.now().UTC(),
			})
			continue
		}

		name := SupplementaryFilename(fileURL)
		if d.opts.MetadataOnly {
			d.reporter.Field("Supplementary file", name)
			continue
		}
		d.reporter.Downloading(name)

		rec, err := d.download(ctx, fileURL, name)
		rec.RunID = runID
		d.addFile(ctx, runID, rec)
		res.Files = append(res.Files, rec)
		if err != nil {
			if !d.opts.KeepGoing {
				return fail(err)
			}
			zap.L().Warn("supplementary file failed, continuing",
				zap.String("url", fileURL),
				zap.Error(err),
			)
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fail(eris.Wrapf(errors.Join(failures...), "%d of %d supplementary files failed", len(failures), len(res.Files)))
	}

	summary.Status = model.RunStatusComplete
	return res, nil
}

func (d *Downloader) download(ctx context.Context, fileURL, name string) (model.FileRecord, error) {
	rec := model.FileRecord{
		URL:       fileURL,
		Filename:  name,
		StartedAt: d.now().UTC(),
	}

	fail := func(err error) (model.FileRecord, error) {
		rec.Status = model.FileStatusFailed
		rec.Error = err.Error()
		rec.FinishedAt = d.now().UTC()
		return rec, err
	}

	if name == "" {
		return fail(eris.Errorf("supplementary file %s has no file name", fileURL))
	}

	if err := os.MkdirAll(d.opts.DestDir, 0o755); err != nil {
		return fail(eris.Wrapf(err, "create destination %s", d.opts.DestDir))
	}
	rec.Path = filepath.Join(d.opts.DestDir, name)

	n, err := d.files.DownloadToFile(ctx, fileURL, rec.Path)
	rec.Bytes = n
	if err != nil {
		return fail(eris.Wrapf(err, "download %s", name))
	}

	rec.Status = model.FileStatusDownloaded
	rec.FinishedAt = d.now().UTC()
	zap.L().Info("supplementary file downloaded",
		zap.String("file", name),
		zap.String("path", rec.Path),
		zap.Int64("bytes", n),
	)
	return rec, nil
}

func (d *Downloader) createRun(ctx context.Context, accession string) string {
	if d.recorder == nil {
		return ""
	}
	run, err := d.recorder.CreateRun(ctx, accession)
	if err != nil {
		zap.L().Warn("history: create run failed", zap.String("accession", accession), zap.Error(err))
		return ""
	}
	return run.ID
}

func (d *Downloader) addFile(ctx context.Context, runID string, rec model.FileRecord) {
	if d.recorder == nil || runID == "" {
		return
	}
	if err := d.recorder.AddFile(ctx, runID, rec); err != nil {
		zap.L().Warn("history: record file failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (d *Downloader) finishRun(ctx context.Context, runID string, summary model.RunSummary) {
	if d.recorder == nil || runID == "" {
		return
	}
	// The run context may already be cancelled; the final status should still land.
	ctx = context.WithoutCancel(ctx)
	if err := d.recorder.FinishRun(ctx, runID, summary); err != nil {
		zap.L().Warn("history: finish run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

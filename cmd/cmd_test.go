package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/geo"
	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/store"
)

const testSOFT = `^SERIES = GSE1000
!Series_title = Test series
!Series_summary = A short summary
!Series_overall_design = Two samples
!Series_supplementary_file = https://example.org/GSE1000_RAW.tar
^SAMPLE = GSM1
!Sample_title = first
^SAMPLE = GSM2
!Sample_title = second
`

// serveSOFT serves testSOFT gzipped at the family SOFT path for GSE1000.
func serveSOFT(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testSOFT))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/series/GSE1nnn/GSE1000/soft/GSE1000_family.soft.gz" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv points the CLI at srv with a temp SQLite history and returns the
// temp working directory.
func testEnv(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("GEO_GEO_SOFT_SOURCE", "https")
	t.Setenv("GEO_GEO_HTTPS_BASE", srv.URL)
	t.Setenv("GEO_OUTPUT_COLOR", "false")
	t.Setenv("GEO_OUTPUT_PROGRESS", "false")
	t.Setenv("GEO_LOG_LEVEL", "error")
	t.Setenv("GEO_STORE_DRIVER", "sqlite")
	t.Setenv("GEO_STORE_DATABASE_URL", filepath.Join(dir, "history.db"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetch_EndToEnd(t *testing.T) {
	srv := serveSOFT(t)
	dir := testEnv(t, srv)

	out, err := execute(t, "fetch", "GSE1000", "--dest", filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.Equal(t, "Title: Test series\n"+
		"Summary: A short summary\n"+
		"Overall design: Two samples\n"+
		"Processing sample: GSM1\n"+
		"Processing sample: GSM2\n", out)

	// The https supplementary file is skipped, so nothing lands on disk.
	_, err = os.Stat(filepath.Join(dir, "out", "GSE1000_RAW.tar"))
	assert.True(t, os.IsNotExist(err))

	out, err = execute(t, "history", "list", "--accession", "GSE1000")
	require.NoError(t, err)
	assert.Contains(t, out, "GSE1000")
	assert.Contains(t, out, "complete")
}

func TestFetch_UnknownSeries(t *testing.T) {
	srv := serveSOFT(t)
	testEnv(t, srv)

	_, err := execute(t, "fetch", "GSE2000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestShow_JSON(t *testing.T) {
	srv := serveSOFT(t)
	testEnv(t, srv)

	out, err := execute(t, "show", "GSE1000", "--format", "json")
	require.NoError(t, err)

	var series geo.Series
	require.NoError(t, json.Unmarshal([]byte(out), &series))
	assert.Equal(t, "GSE1000", series.Name)
	assert.Len(t, series.Samples, 2)
}

func TestPrintSeries(t *testing.T) {
	cfg = &config.Config{}

	series := &geo.Series{
		Name: "GSE1",
		Metadata: geo.Metadata{
			"title":              {"T"},
			"summary":            {"S1", "S2"},
			"overall_design":     {"D"},
			"supplementary_file": {"ftp://host/a/f.tar"},
		},
		Platforms: []*geo.Platform{{Name: "GPL1"}},
		Samples:   []*geo.Sample{{Name: "GSM9", Metadata: geo.Metadata{"title": {"nine"}}}},
	}

	var buf bytes.Buffer
	require.NoError(t, printSeries(&buf, series))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Accession: GSE1\nTitle: T\nSummary: S1\nS2\n"))
	assert.Contains(t, out, "Supplementary file: ftp://host/a/f.tar")
	assert.Contains(t, out, "Platform: GPL1")
	assert.Contains(t, out, "GSM9")
	assert.Contains(t, out, "nine")
}

func TestPrintRun(t *testing.T) {
	cfg = &config.Config{}

	run := &model.Run{
		ID:            "run-1",
		Accession:     "GSE1",
		Status:        model.RunStatusFailed,
		ErrorCategory: model.ErrorCategoryNotFound,
		Error:         "550 missing",
		Files: []model.FileRecord{
			{Filename: "f.tar", Status: model.FileStatusFailed, Error: "550 missing"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printRun(&buf, run))

	out := buf.String()
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Status: failed")
	assert.Contains(t, out, "Error: [not_found] 550 missing")
	assert.Contains(t, out, "f.tar")
}

func TestInitStore_None(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: config.DriverNone}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{
		Driver:      config.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "h.db"),
	}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestInitStore_Unsupported(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql"}}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNewClients_SOFTSource(t *testing.T) {
	c := &config.Config{}
	c.Geo.SOFTSource = config.SOFTSourceHTTPS
	c.Geo.HTTPSBase = "https://mirror.example.org"
	c.FTP.TimeoutSecs = 1
	c.HTTP.TimeoutSecs = 1
	c.HTTP.RequestsPerSecond = 1

	cl, err := newClients(c, nil)
	require.NoError(t, err)
	u, err := cl.series.SOFTURL("GSE1")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.org/geo/series/GSEnnn/GSE1/soft/GSE1_family.soft.gz", u)

	c.Geo.SOFTSource = "gopher"
	_, err = newClients(c, nil)
	require.Error(t, err)
}

func TestProgressWriter_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Nil(t, progressWriter(&buf))
}

package main

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/term"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/fetcher"
	"github.com/sells-group/geo-cli/internal/geo"
	"github.com/sells-group/geo-cli/internal/report"
)

// clients bundles the transports and series client for one command.
type clients struct {
	ftp    *fetcher.FTPFetcher
	http   *fetcher.HTTPFetcher
	series *geo.Client
}

// newClients wires the fetchers from config. progress receives byte progress
// for supplementary downloads; nil disables it.
func newClients(c *config.Config, progress io.Writer) (*clients, error) {
	var progressFn fetcher.ProgressFunc
	if progress != nil && c.Output.Progress {
		progressFn = report.Progress(progress)
	}

	ftpFetcher := fetcher.NewFTPFetcher(fetcher.FTPOptions{
		Timeout:  time.Duration(c.FTP.TimeoutSecs) * time.Second,
		Progress: progressFn,
	})
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         c.HTTP.UserAgent,
		Timeout:           time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		RequestsPerSecond: c.HTTP.RequestsPerSecond,
	})

	var (
		softFetcher fetcher.Fetcher
		base        string
	)
	switch c.Geo.SOFTSource {
	case config.SOFTSourceHTTPS:
		softFetcher, base = httpFetcher, c.Geo.HTTPSBase
	case config.SOFTSourceFTP, "":
		softFetcher, base = ftpFetcher, c.Geo.FTPBase
	default:
		return nil, eris.Errorf("unsupported soft source: %s", c.Geo.SOFTSource)
	}

	series, err := geo.NewClient(softFetcher, geo.ClientOptions{
		BaseURL:  base,
		Encoding: c.Geo.Encoding,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init geo client")
	}

	return &clients{ftp: ftpFetcher, http: httpFetcher, series: series}, nil
}

// colorOutput reports whether stdout labels should be coloured.
func colorOutput() bool {
	return report.ColorEnabled(cfg.Output.Color)
}

// progressWriter returns w when it is an interactive terminal.
func progressWriter(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return w
}

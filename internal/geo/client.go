package geo

import (
	"compress/gzip"
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/geo-cli/internal/fetcher"
)

// SeriesSource fetches series metadata by accession.
type SeriesSource interface {
	GetSeries(ctx context.Context, accession string) (*Series, error)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the GEO mirror root, e.g. ftp://ftp.ncbi.nlm.nih.gov.
	BaseURL string
	// Encoding is a WHATWG charset label for SOFT text. Defaults to utf-8.
	Encoding string
}

// Client retrieves family SOFT files through a Fetcher and parses them.
// Nothing is cached; each call downloads the record again.
type Client struct {
	fetcher fetcher.Fetcher
	baseURL string
	enc     encoding.Encoding
}

// NewClient creates a Client that downloads through f.
func NewClient(f fetcher.Fetcher, opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "ftp://ftp.ncbi.nlm.nih.gov"
	}
	if opts.Encoding == "" {
		opts.Encoding = "utf-8"
	}
	enc, err := htmlindex.Get(opts.Encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: unsupported encoding %q", opts.Encoding)
	}
	return &Client{
		fetcher: f,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		enc:     enc,
	}, nil
}

// SOFTURL returns the family SOFT URL for a series accession.
func (c *Client) SOFTURL(accession string) (string, error) {
	acc, err := ParseAccession(accession)
	if err != nil {
		return "", err
	}
	p, err := acc.FamilySOFTPath()
	if err != nil {
		return "", err
	}
	return c.baseURL + p, nil
}

// GetSeries downloads and parses the family SOFT file for accession.
func (c *Client) GetSeries(ctx context.Context, accession string) (*Series, error) {
	softURL, err := c.SOFTURL(accession)
	if err != nil {
		return nil, err
	}

	zap.L().Info("geo: fetching series metadata",
		zap.String("accession", accession),
		zap.String("url", softURL),
	)

	body, err := c.fetcher.Download(ctx, softURL)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: download %s", softURL)
	}
	defer body.Close() //nolint:errcheck

	series, err := c.decode(body)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse %s", accession)
	}

	zap.L().Info("geo: series metadata parsed",
		zap.String("accession", series.Name),
		zap.Int("samples", len(series.Samples)),
		zap.Int("platforms", len(series.Platforms)),
	)
	return series, nil
}

func (c *Client) decode(r io.Reader) (*Series, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "gzip: open")
	}
	defer gz.Close() //nolint:errcheck

	return ParseSOFT(c.enc.NewDecoder().Reader(gz))
}

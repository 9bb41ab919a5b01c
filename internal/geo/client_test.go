package geo

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// memFetcher serves fixed bodies keyed by URL.
type memFetcher struct {
	bodies map[string][]byte
	urls   []string
}

func (m *memFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	m.urls = append(m.urls, url)
	b, ok := m.bodies[url]
	if !ok {
		return nil, errors.New("550 file not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memFetcher) DownloadToFile(_ context.Context, url string, path string) (int64, error) {
	b, ok := m.bodies[url]
	if !ok {
		return 0, errors.New("550 file not found")
	}
	return int64(len(b)), os.WriteFile(path, b, 0o644)
}

func gzipBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(b)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const fixtureURL = "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE244nnn/GSE244901/soft/GSE244901_family.soft.gz"

func TestClient_SOFTURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		acc  string
		want string
	}{
		{"default ftp base", "", "GSE244901", fixtureURL},
		{"https base", "https://ftp.ncbi.nlm.nih.gov", "GSE1", "https://ftp.ncbi.nlm.nih.gov/geo/series/GSEnnn/GSE1/soft/GSE1_family.soft.gz"},
		{"trailing slash", "ftp://mirror.example.org/", "GSE1000", "ftp://mirror.example.org/geo/series/GSE1nnn/GSE1000/soft/GSE1000_family.soft.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(&memFetcher{}, ClientOptions{BaseURL: tt.base})
			require.NoError(t, err)
			got, err := c.SOFTURL(tt.acc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GetSeries(t *testing.T) {
	raw, err := os.ReadFile("testdata/GSE244901_family.soft")
	require.NoError(t, err)

	f := &memFetcher{bodies: map[string][]byte{fixtureURL: gzipBytes(t, raw)}}
	c, err := NewClient(f, ClientOptions{})
	require.NoError(t, err)

	series, err := c.GetSeries(context.Background(), "GSE244901")
	require.NoError(t, err)
	assert.Equal(t, "GSE244901", series.Name)
	assert.Len(t, series.Samples, 2)
	assert.Equal(t, []string{fixtureURL}, f.urls)
}

func TestClient_GetSeries_RefetchesEveryCall(t *testing.T) {
	raw, err := os.ReadFile("testdata/GSE244901_family.soft")
	require.NoError(t, err)

	f := &memFetcher{bodies: map[string][]byte{fixtureURL: gzipBytes(t, raw)}}
	c, err := NewClient(f, ClientOptions{})
	require.NoError(t, err)

	for range 2 {
		_, err := c.GetSeries(context.Background(), "GSE244901")
		require.NoError(t, err)
	}
	assert.Len(t, f.urls, 2)
}

func TestClient_GetSeries_Latin1(t *testing.T) {
	doc := "^SERIES = GSE7\n!Series_title = Café study\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(doc)
	require.NoError(t, err)

	url := "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSEnnn/GSE7/soft/GSE7_family.soft.gz"
	f := &memFetcher{bodies: map[string][]byte{url: gzipBytes(t, []byte(latin1))}}
	c, err := NewClient(f, ClientOptions{Encoding: "latin1"})
	require.NoError(t, err)

	series, err := c.GetSeries(context.Background(), "GSE7")
	require.NoError(t, err)
	title, _ := series.Metadata.First("title")
	assert.Equal(t, "Café study", title)
}

func TestClient_GetSeries_NotGzip(t *testing.T) {
	f := &memFetcher{bodies: map[string][]byte{fixtureURL: []byte("^SERIES = GSE244901\n")}}
	c, err := NewClient(f, ClientOptions{})
	require.NoError(t, err)

	_, err = c.GetSeries(context.Background(), "GSE244901")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestClient_GetSeries_DownloadError(t *testing.T) {
	c, err := NewClient(&memFetcher{}, ClientOptions{})
	require.NoError(t, err)

	_, err = c.GetSeries(context.Background(), "GSE244901")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo: download")
}

func TestClient_GetSeries_RejectsNonSeries(t *testing.T) {
	f := &memFetcher{}
	c, err := NewClient(f, ClientOptions{})
	require.NoError(t, err)

	_, err = c.GetSeries(context.Background(), "GSM7832001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedAccession))
	assert.Empty(t, f.urls)
}

func TestNewClient_BadEncoding(t *testing.T) {
	_, err := NewClient(&memFetcher{}, ClientOptions{Encoding: "klingon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

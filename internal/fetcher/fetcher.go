package fetcher

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ProgressFunc returns a writer that observes the bytes of one transfer.
// total is -1 when the remote size is unknown. The writer is closed when the
// transfer ends, successfully or not.
type ProgressFunc func(name string, total int64) io.WriteCloser

// writeFile streams r into path, truncating any existing file.
func writeFile(r io.Reader, path string, progress io.Writer) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "create file")
	}
	defer file.Close() //nolint:errcheck

	var w io.Writer = file
	if progress != nil {
		w = io.MultiWriter(file, progress)
	}

	n, err := io.Copy(w, r)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	if err := file.Close(); err != nil {
		return n, eris.Wrap(err, "close file")
	}
	return n, nil
}

package fetcher

import (
	"context"
	"io"
	"net"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNotFTP is returned when a URL does not use the ftp scheme.
var ErrNotFTP = eris.New("not an ftp url")

// FTPOptions configures the FTP fetcher.
type FTPOptions struct {
	Timeout  time.Duration
	Progress ProgressFunc
}

// FTPFetcher downloads files over FTP with an anonymous login. Every call
// opens its own control connection and quits it before returning.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// FTPTarget is the split form of an ftp:// URL.
type FTPTarget struct {
	Host     string // host:port, port defaults to 21
	Dir      string // remote parent directory, "/" for root-level files
	Filename string // final path segment
}

// ParseFTPURL splits an FTP URL into host, remote directory and file name.
// The path is taken literally: '#', '?' and percent escapes are part of the
// remote file name, the same way the local file is named from the URL.
func ParseFTPURL(rawURL string) (FTPTarget, error) {
	rest, ok := strings.CutPrefix(rawURL, "ftp://")
	if !ok {
		scheme, _, _ := strings.Cut(rawURL, "://")
		return FTPTarget{}, eris.Wrapf(ErrNotFTP, "expected ftp scheme, got %q", scheme)
	}

	host, p, _ := strings.Cut(rest, "/")
	if host == "" {
		return FTPTarget{}, eris.New("empty host in ftp url")
	}
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), "21")
	}

	p = "/" + p
	if p == "/" {
		return FTPTarget{}, eris.New("empty path in ftp url")
	}
	if strings.HasSuffix(p, "/") {
		return FTPTarget{}, eris.Errorf("ftp url %q names a directory, not a file", rawURL)
	}

	return FTPTarget{
		Host:     host,
		Dir:      path.Dir(p),
		Filename: path.Base(p),
	}, nil
}

// ftpConnReader wraps an FTP response and connection so that closing the reader
// also closes the FTP response and disconnects from the server.
type ftpConnReader struct {
	resp   *ftp.Response
	conn   *ftp.ServerConn
	closed bool
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "quit ftp connection")
	}
	return nil
}

// open dials, logs in, changes into the target directory and starts the
// transfer. size is -1 unless withSize is set and the server answers SIZE.
func (f *FTPFetcher) open(ctx context.Context, target FTPTarget, withSize bool) (*ftpConnReader, int64, error) {
	zap.L().Debug("ftp: connecting",
		zap.String("host", target.Host),
		zap.String("dir", target.Dir),
		zap.String("file", target.Filename),
	)

	conn, err := ftp.Dial(target.Host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, 0, eris.Wrap(err, "ftp dial")
	}

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		_ = conn.Quit()
		return nil, 0, eris.Wrap(err, "ftp login")
	}

	if err := conn.ChangeDir(target.Dir); err != nil {
		_ = conn.Quit()
		return nil, 0, eris.Wrapf(err, "ftp cwd %s", target.Dir)
	}

	size := int64(-1)
	if withSize {
		if n, err := conn.FileSize(target.Filename); err == nil {
			size = n
		} else {
			zap.L().Debug("ftp: size unavailable", zap.String("file", target.Filename), zap.Error(err))
		}
	}

	resp, err := conn.Retr(target.Filename)
	if err != nil {
		_ = conn.Quit()
		return nil, 0, eris.Wrapf(err, "ftp retrieve %s", target.Filename)
	}

	return &ftpConnReader{resp: resp, conn: conn}, size, nil
}

// Download connects to the FTP server, retrieves the file, and returns a reader.
// The caller must close the returned ReadCloser to release the FTP connection.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	target, err := ParseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}
	rc, _, err := f.open(ctx, target, false)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// DownloadToFile downloads the FTP URL to a local file, overwriting it if it
// exists. The local file is only created once the server has accepted RETR.
// Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, ftpURL string, dest string) (int64, error) {
	target, err := ParseFTPURL(ftpURL)
	if err != nil {
		return 0, err
	}

	rc, size, err := f.open(ctx, target, f.opts.Progress != nil)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck

	var progress io.WriteCloser
	if f.opts.Progress != nil {
		progress = f.opts.Progress(target.Filename, size)
		defer progress.Close() //nolint:errcheck
	}

	n, err := writeFile(rc, dest, progress)
	if err != nil {
		return n, err
	}

	if err := rc.Close(); err != nil {
		return n, err
	}

	zap.L().Debug("ftp: download complete",
		zap.String("file", target.Filename),
		zap.String("dest", dest),
		zap.Int64("bytes", n),
	)
	return n, nil
}

package fetcher

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    FTPTarget
		wantErr bool
	}{
		{
			name: "host dir and file",
			url:  "ftp://host/a/b/file.txt",
			want: FTPTarget{Host: "host:21", Dir: "/a/b", Filename: "file.txt"},
		},
		{
			name: "geo supplementary file",
			url:  "ftp://ftp.ncbi.nlm.nih.gov/geo/series/GSE244nnn/GSE244901/suppl/GSE244901_RAW.tar",
			want: FTPTarget{
				Host:     "ftp.ncbi.nlm.nih.gov:21",
				Dir:      "/geo/series/GSE244nnn/GSE244901/suppl",
				Filename: "GSE244901_RAW.tar",
			},
		},
		{
			name: "ftp url with port",
			url:  "ftp://ftp.example.com:2121/data/file.txt",
			want: FTPTarget{Host: "ftp.example.com:2121", Dir: "/data", Filename: "file.txt"},
		},
		{
			name: "file at root",
			url:  "ftp://ftp.example.com/readme.txt",
			want: FTPTarget{Host: "ftp.example.com:21", Dir: "/", Filename: "readme.txt"},
		},
		{
			name: "hash kept in file name",
			url:  "ftp://host/a/b/sample#1.txt",
			want: FTPTarget{Host: "host:21", Dir: "/a/b", Filename: "sample#1.txt"},
		},
		{
			name: "question mark kept in file name",
			url:  "ftp://host/a/what?.txt",
			want: FTPTarget{Host: "host:21", Dir: "/a", Filename: "what?.txt"},
		},
		{
			name: "percent escape not decoded",
			url:  "ftp://host/a/file%20x.txt",
			want: FTPTarget{Host: "host:21", Dir: "/a", Filename: "file%20x.txt"},
		},
		{
			name: "invalid percent escape accepted",
			url:  "ftp://host/a/file%zz.txt",
			want: FTPTarget{Host: "host:21", Dir: "/a", Filename: "file%zz.txt"},
		},
		{
			name:    "http scheme rejected",
			url:     "http://example.com/file.csv",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://ftp.example.com",
			wantErr: true,
		},
		{
			name:    "root only",
			url:     "ftp://ftp.example.com/",
			wantErr: true,
		},
		{
			name:    "directory url",
			url:     "ftp://ftp.example.com/pub/data/",
			wantErr: true,
		},
		{
			name:    "missing host",
			url:     "ftp:///pub/file.txt",
			wantErr: true,
		},
		{
			name:    "invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFTPURL_NotFTPSentinel(t *testing.T) {
	_, err := ParseFTPURL("https://ftp.ncbi.nlm.nih.gov/geo/file.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFTP))
}

func TestNewFTPFetcher_DefaultTimeout(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
}

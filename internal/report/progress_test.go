package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_KnownSize(t *testing.T) {
	var buf bytes.Buffer
	bar := Progress(&buf)("GSE1_RAW.tar", 10)

	n, err := bar.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	require.NoError(t, bar.Close())

	assert.Contains(t, buf.String(), "GSE1_RAW.tar")
}

func TestProgress_UnknownSize(t *testing.T) {
	var buf bytes.Buffer
	bar := Progress(&buf)("stream.gz", -1)

	_, err := bar.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, bar.Close())
}

package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geo-cli/internal/geo"
)

func testSeries() *geo.Series {
	return &geo.Series{
		Name: "GSE1",
		Metadata: geo.Metadata{
			"title":   {"A title"},
			"summary": {"one", "two"},
		},
		Samples: []*geo.Sample{{Name: "GSM1", Metadata: geo.Metadata{"title": {"s1"}}}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
		{"JSON", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDump_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, FormatJSON, testSeries()))

	var got geo.Series
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "GSE1", got.Name)
	assert.Equal(t, []string{"one", "two"}, got.Metadata.Values("summary"))
	require.Len(t, got.Samples, 1)
	assert.Contains(t, buf.String(), "\n  ")
}

func TestDump_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, FormatYAML, testSeries()))

	var got geo.Series
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "GSE1", got.Name)
	title, ok := got.Metadata.First("title")
	require.True(t, ok)
	assert.Equal(t, "A title", title)
}

func TestDump_TextRejected(t *testing.T) {
	var buf bytes.Buffer
	err := Dump(&buf, FormatText, testSeries())
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

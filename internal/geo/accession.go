// Package geo retrieves and parses Gene Expression Omnibus (GEO) records and
// downloads their supplementary files.
package geo

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind is the record type encoded in an accession prefix.
type Kind string

const (
	KindSeries   Kind = "GSE"
	KindSample   Kind = "GSM"
	KindPlatform Kind = "GPL"
	KindDataset  Kind = "GDS"
)

var (
	// ErrInvalidAccession is returned for identifiers that are not GEO accessions.
	ErrInvalidAccession = eris.New("invalid geo accession")
	// ErrUnsupportedAccession is returned for valid accessions that cannot be fetched as a series.
	ErrUnsupportedAccession = eris.New("unsupported geo accession")
)

var accessionRe = regexp.MustCompile(`^(GSE|GSM|GPL|GDS)([0-9]+)$`)

// Accession is a validated GEO identifier such as GSE244901.
type Accession struct {
	Kind   Kind
	Number string
}

// ParseAccession validates s. Surrounding whitespace and letter case are ignored.
func ParseAccession(s string) (Accession, error) {
	m := accessionRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return Accession{}, eris.Wrapf(ErrInvalidAccession, "%q", s)
	}
	return Accession{Kind: Kind(m[1]), Number: m[2]}, nil
}

func (a Accession) String() string {
	return string(a.Kind) + a.Number
}

// Stub returns the range directory GEO uses to shard records on its FTP site:
// the accession with its last three digits replaced by "nnn", or just the
// prefix plus "nnn" for accessions of three digits or fewer.
func (a Accession) Stub() string {
	if len(a.Number) <= 3 {
		return string(a.Kind) + "nnn"
	}
	return string(a.Kind) + a.Number[:len(a.Number)-3] + "nnn"
}

// FamilySOFTPath returns the path of a series' family SOFT file relative to
// the GEO FTP root, e.g. /geo/series/GSE244nnn/GSE244901/soft/GSE244901_family.soft.gz.
func (a Accession) FamilySOFTPath() (string, error) {
	if a.Kind != KindSeries {
		return "", eris.Wrapf(ErrUnsupportedAccession, "%s: only %s records can be fetched", a, KindSeries)
	}
	acc := a.String()
	return "/geo/series/" + a.Stub() + "/" + acc + "/soft/" + acc + "_family.soft.gz", nil
}

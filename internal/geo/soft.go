package geo

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoSeries is returned when a SOFT document contains no ^SERIES entity.
var ErrNoSeries = eris.New("soft: no series entity")

// maxSOFTLine bounds a single SOFT line; GEO puts whole abstracts on one line.
const maxSOFTLine = 16 << 20

// attrPrefixRe matches the "!Entity_" prefix of an attribute line.
var attrPrefixRe = regexp.MustCompile(`^!\w*?_`)

// ParseSOFT reads a family SOFT document and returns its series with every
// sample and platform it declares. Data tables are skipped.
func ParseSOFT(r io.Reader) (*Series, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxSOFTLine)

	var (
		series  *Series
		current Metadata
		inTable bool
		lineNo  int

		// entities that appear before ^SERIES
		earlySamples   []*Sample
		earlyPlatforms []*Platform
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n\t ")
		if line == "" {
			continue
		}

		if inTable {
			if strings.HasPrefix(line, "!") && strings.HasSuffix(line, "_table_end") {
				inTable = false
			}
			continue
		}

		switch line[0] {
		case '^':
			kind, name := splitEntry(line[1:])
			switch strings.ToUpper(kind) {
			case "SERIES":
				if series != nil {
					zap.L().Warn("soft: ignoring additional series entity", zap.String("series", name))
					current = Metadata{}
					continue
				}
				series = &Series{Name: name, Metadata: Metadata{}}
				current = series.Metadata
			case "SAMPLE":
				gsm := &Sample{Name: name, Metadata: Metadata{}}
				if series != nil {
					series.Samples = append(series.Samples, gsm)
				} else {
					earlySamples = append(earlySamples, gsm)
				}
				current = gsm.Metadata
			case "PLATFORM":
				gpl := &Platform{Name: name, Metadata: Metadata{}}
				if series != nil {
					series.Platforms = append(series.Platforms, gpl)
				} else {
					earlyPlatforms = append(earlyPlatforms, gpl)
				}
				current = gpl.Metadata
			default:
				// DATABASE and anything unknown: read and discard.
				current = Metadata{}
			}

		case '!':
			if strings.HasSuffix(line, "_table_begin") {
				inTable = true
				continue
			}
			if current == nil {
				return nil, eris.Errorf("soft: line %d: attribute before any entity", lineNo)
			}
			key, value := splitEntry(strings.TrimPrefix(attrPrefixRe.ReplaceAllString(line, ""), "!"))
			current.add(key, value)

		default:
			// "#column = description" lines and stray table rows.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "soft: scan")
	}

	if series == nil {
		return nil, ErrNoSeries
	}
	series.Samples = append(earlySamples, series.Samples...)
	series.Platforms = append(earlyPlatforms, series.Platforms...)
	return series, nil
}

// splitEntry splits "key = value" on the first '='. A line without '=' is a
// key with an empty value.
func splitEntry(s string) (key, value string) {
	k, v, found := strings.Cut(s, "=")
	if !found {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(k), strings.TrimSpace(v)
}

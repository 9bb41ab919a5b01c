package geo

// Metadata holds the attribute lines of one SOFT entity. Keys lose their
// entity prefix but keep their case ("!Series_overall_design" becomes
// "overall_design"); values keep file order.
type Metadata map[string][]string

// First returns the first value stored under key.
func (m Metadata) First(key string) (string, bool) {
	vals := m[key]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Values returns every value stored under key, or nil if the key is absent.
func (m Metadata) Values(key string) []string {
	return m[key]
}

func (m Metadata) add(key, value string) {
	m[key] = append(m[key], value)
}

// Sample is a GSM entity.
type Sample struct {
	Name     string   `json:"name" yaml:"name"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Platform is a GPL entity.
type Platform struct {
	Name     string   `json:"name" yaml:"name"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Series is a GSE record together with the samples and platforms its family
// file describes.
type Series struct {
	Name      string      `json:"name" yaml:"name"`
	Metadata  Metadata    `json:"metadata" yaml:"metadata"`
	Samples   []*Sample   `json:"samples" yaml:"samples"`
	Platforms []*Platform `json:"platforms" yaml:"platforms"`
}

// Sample looks up a sample by its GSM name.
func (s *Series) Sample(name string) (*Sample, bool) {
	for _, gsm := range s.Samples {
		if gsm.Name == name {
			return gsm, true
		}
	}
	return nil, false
}

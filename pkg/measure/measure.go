// Package measure stores the measurements a pipeline run accumulates and
// resolves metadata tokens inside file-name patterns.
//
// Measurements are grouped per image set (cycle, 1-based) plus an
// experiment-wide bucket. Metadata extracted by loading modules is stored
// under features named "Metadata_<tag>"; the conventional bookkeeping
// features "FileName_<image>" and "PathName_<image>" record where each named
// image came from.
package measure

import (
	"fmt"
	"regexp"
	"sort"
)

// Feature name prefixes shared across modules.
const (
	MetadataPrefix = "Metadata_"
	FileNamePrefix = "FileName_"
	PathNamePrefix = "PathName_"
)

// ErrUnknownTag is returned when a pattern references a metadata tag with no
// value in the current image set.
var ErrUnknownTag = fmt.Errorf("unknown metadata tag")

// Metadata tokens come in two forms; both are honored when substituting:
//
//	\g<Tag>   the modern form
//	(?<Tag>)  accepted for pipelines migrated from older tools
var (
	tokenModern = regexp.MustCompile(`\\g<([A-Za-z_][A-Za-z0-9_]*)>`)
	tokenLegacy = regexp.MustCompile(`\(\?<([A-Za-z_][A-Za-z0-9_]*)>\)`)
)

// Measurements accumulates per-cycle and experiment-wide features.
type Measurements struct {
	current    int
	image      map[int]map[string]any
	experiment map[string]any
}

// New creates an empty measurement store positioned on image set 1.
func New() *Measurements {
	return &Measurements{
		current:    1,
		image:      make(map[int]map[string]any),
		experiment: make(map[string]any),
	}
}

// ImageSetNumber returns the current image set number (1-based).
func (m *Measurements) ImageSetNumber() int { return m.current }

// SetImageSetNumber moves the cursor to the given image set. Numbers below 1
// clamp to 1.
func (m *Measurements) SetImageSetNumber(n int) {
	if n < 1 {
		n = 1
	}
	m.current = n
}

// NextImageSet advances the cursor to the next image set.
func (m *Measurements) NextImageSet() {
	m.current++
}

// Add records a feature value for the current image set.
func (m *Measurements) Add(feature string, value any) {
	set, ok := m.image[m.current]
	if !ok {
		set = make(map[string]any)
		m.image[m.current] = set
	}
	set[feature] = value
}

// AddForSet records a feature value for an explicit image set number.
func (m *Measurements) AddForSet(n int, feature string, value any) {
	set, ok := m.image[n]
	if !ok {
		set = make(map[string]any)
		m.image[n] = set
	}
	set[feature] = value
}

// AddExperiment records an experiment-wide feature value.
func (m *Measurements) AddExperiment(feature string, value any) {
	m.experiment[feature] = value
}

// Get returns a feature value for the current image set.
func (m *Measurements) Get(feature string) (any, bool) {
	set, ok := m.image[m.current]
	if !ok {
		return nil, false
	}
	value, ok := set[feature]
	return value, ok
}

// GetString returns a feature for the current image set rendered as a string.
func (m *Measurements) GetString(feature string) (string, bool) {
	value, ok := m.Get(feature)
	if !ok {
		return "", false
	}
	if s, ok := value.(string); ok {
		return s, true
	}
	return fmt.Sprint(value), true
}

// GetExperiment returns an experiment-wide feature value.
func (m *Measurements) GetExperiment(feature string) (any, bool) {
	value, ok := m.experiment[feature]
	return value, ok
}

// Features returns the sorted feature names recorded for the current image set.
func (m *Measurements) Features() []string {
	set := m.image[m.current]
	features := make([]string, 0, len(set))
	for feature := range set {
		features = append(features, feature)
	}
	sort.Strings(features)
	return features
}

// MetadataTags returns the sorted metadata tag names (without the prefix)
// available in the current image set.
func (m *Measurements) MetadataTags() []string {
	var tags []string
	for _, feature := range m.Features() {
		if len(feature) > len(MetadataPrefix) && feature[:len(MetadataPrefix)] == MetadataPrefix {
			tags = append(tags, feature[len(MetadataPrefix):])
		}
	}
	return tags
}

// ApplyMetadata substitutes every metadata token in pattern with the
// corresponding Metadata_<tag> value of the current image set. A token whose
// tag has no value fails with ErrUnknownTag naming the tag.
func (m *Measurements) ApplyMetadata(pattern string) (string, error) {
	var missing string

	substitute := func(token, tag string) string {
		value, ok := m.GetString(MetadataPrefix + tag)
		if !ok {
			if missing == "" {
				missing = tag
			}
			return token
		}
		return value
	}

	result := tokenModern.ReplaceAllStringFunc(pattern, func(token string) string {
		tag := tokenModern.FindStringSubmatch(token)[1]
		return substitute(token, tag)
	})
	result = tokenLegacy.ReplaceAllStringFunc(result, func(token string) string {
		tag := tokenLegacy.FindStringSubmatch(token)[1]
		return substitute(token, tag)
	})

	if missing != "" {
		return "", fmt.Errorf("%w %q in pattern %q (image set %d)", ErrUnknownTag, missing, pattern, m.current)
	}
	return result, nil
}

// HasTokens reports whether the pattern contains any metadata tokens.
func HasTokens(pattern string) bool {
	return tokenModern.MatchString(pattern) || tokenLegacy.MatchString(pattern)
}

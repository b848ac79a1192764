package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ruleset holds the static routing and detection tables. Lookups are linear
// scans and substring matches over small constant tables; matching is
// case-insensitive throughout.
type Ruleset struct {
	VIPTitles       []string          `yaml:"vip_titles"`
	SeniorTitles    []string          `yaml:"senior_titles"`
	Competitors     []string          `yaml:"competitors"`
	ZipPrefixStates map[string]string `yaml:"zip_prefix_states"`
	StateRegions    map[string]string `yaml:"state_regions"`
	RegionReps      map[string]string `yaml:"region_reps"`
}

// Default returns a fresh copy of the built-in tables. Copies keep overlay
// merges from writing into the package-level defaults.
func Default() *Ruleset {
	return &Ruleset{
		VIPTitles:       append([]string(nil), defaultVIPTitles...),
		SeniorTitles:    append([]string(nil), defaultSeniorTitles...),
		Competitors:     append([]string(nil), defaultCompetitors...),
		ZipPrefixStates: copyTable(defaultZipPrefixStates),
		StateRegions:    copyTable(defaultStateRegions),
		RegionReps:      copyTable(defaultRegionReps),
	}
}

func copyTable(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Load returns the default tables merged with the YAML override file at path,
// when path is non-empty. Override lists append; override maps win per key.
func Load(path string) (*Ruleset, error) {
	rs := Default()
	if strings.TrimSpace(path) == "" {
		return rs, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var override Ruleset
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	rs.merge(&override)
	return rs, nil
}

func (r *Ruleset) merge(o *Ruleset) {
	if o == nil {
		return
	}
	r.VIPTitles = appendUnique(r.VIPTitles, o.VIPTitles)
	r.SeniorTitles = appendUnique(r.SeniorTitles, o.SeniorTitles)
	r.Competitors = appendUnique(r.Competitors, o.Competitors)
	for k, v := range o.ZipPrefixStates {
		r.ZipPrefixStates[k] = v
	}
	for k, v := range o.StateRegions {
		r.StateRegions[strings.ToUpper(k)] = v
	}
	for k, v := range o.RegionReps {
		r.RegionReps[regionKey(k)] = v
	}
}

func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		base = append(base, strings.TrimSpace(s))
	}
	return base
}

func regionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

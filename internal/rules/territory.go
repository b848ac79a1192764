package rules

import "strings"

// Territory is the routing result for one contact.
type Territory struct {
	State  string `json:"state"`
	Region string `json:"region"`
	Rep    string `json:"rep"`
}

// StateForZip resolves a US ZIP to a state code by its leading 3 digits.
// Returns "" when the prefix is not in the table.
func (r *Ruleset) StateForZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) < 3 {
		return ""
	}
	return r.ZipPrefixStates[zip[:3]]
}

func (r *Ruleset) RegionForState(state string) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		return DefaultRegion
	}
	if region, ok := r.StateRegions[state]; ok {
		return region
	}
	return DefaultRegion
}

func (r *Ruleset) RepForRegion(region string) string {
	if rep, ok := r.RegionReps[strings.ToLower(strings.TrimSpace(region))]; ok {
		return rep
	}
	return DefaultRep
}

// AssignTerritory runs the full zip -> state -> region -> rep chain.
func (r *Ruleset) AssignTerritory(zip string) Territory {
	state := r.StateForZip(zip)
	region := r.RegionForState(state)
	return Territory{
		State:  state,
		Region: region,
		Rep:    r.RepForRegion(region),
	}
}

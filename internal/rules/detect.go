package rules

import "strings"

// IsVIPTitle reports whether the title substring-matches any VIP entry.
func (r *Ruleset) IsVIPTitle(title string) bool {
	return matchesAny(title, r.VIPTitles)
}

// IsSeniorTitle matches manager-tier titles that score below VIP.
func (r *Ruleset) IsSeniorTitle(title string) bool {
	return matchesAny(title, r.SeniorTitles)
}

// IsCompetitor reports whether the company name substring-matches a known
// competitor.
func (r *Ruleset) IsCompetitor(company string) bool {
	return matchesAny(company, r.Competitors)
}

func matchesAny(value string, table []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	for _, entry := range table {
		if entry == "" {
			continue
		}
		if strings.Contains(value, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}

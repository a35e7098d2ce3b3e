package covid

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FilterCountries returns the countries whose name contains term, ignoring
// case. An empty term matches everything. Order is preserved.
func FilterCountries(list []CountryRecord, term string) []CountryRecord {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]CountryRecord, 0, len(list))
	for _, c := range list {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FindCountry looks a country up by its code, ignoring case.
func FindCountry(list []CountryRecord, code string) (CountryRecord, bool) {
	code = strings.TrimSpace(code)
	for _, c := range list {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return CountryRecord{}, false
}

// SuggestCountry returns the country whose name is closest to term by edit
// distance. ok is false for an empty term or list, or when the best match
// is further away than half the term length.
func SuggestCountry(list []CountryRecord, term string) (CountryRecord, bool) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" || len(list) == 0 {
		return CountryRecord{}, false
	}

	best := -1
	bestDist := 0
	for i, c := range list {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c.Name))
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist > (len(needle)+1)/2 {
		return CountryRecord{}, false
	}
	return list[best], true
}

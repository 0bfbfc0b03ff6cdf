package targetid

import "strings"

// Normalize canonicalizes target names and their common aliases.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	for _, candidate := range aliasCandidates(normalized) {
		if canonical, ok := aliases[candidate]; ok {
			return canonical
		}
	}
	return strings.TrimPrefix(normalized, "target-")
}

func aliasCandidates(normalized string) []string {
	candidates := []string{normalized}
	if trimmed := strings.Trim(strings.TrimPrefix(normalized, "target-"), "-"); trimmed != "" && trimmed != normalized {
		candidates = append(candidates, trimmed)
	}
	return candidates
}

var aliases = map[string]string{
	"quadratic": "quadratic",
	"square":    "quadratic",
	"2x^2":      "quadratic",
	"2x2":       "quadratic",
	"linear":    "linear",
	"line":      "linear",
	"3x+1":      "linear",
	"cubic":     "cubic",
	"cube":      "cubic",
	"x^3-x":     "cubic",
	"sum":       "sum",
	"add":       "sum",
	"addition":  "sum",
	"x+y":       "sum",
	"product":   "product",
	"mul":       "product",
	"multiply":  "product",
	"x*y":       "product",
}

package weights

import "strings"

// Knowledge branch codes used by the Andalusian weighting tables.
const (
	BranchSocial      = "SyJ"
	BranchHealth      = "SD"
	BranchScience     = "C"
	BranchEngineering = "IyA"
	BranchArts        = "AyH"
)

// MainBranches lists the five single-branch codes in display order.
var MainBranches = []string{BranchScience, BranchHealth, BranchEngineering, BranchSocial, BranchArts}

var branchNames = map[string]string{
	"SyJ":     "Ciencias Sociales y Jurídicas",
	"SD":      "Ciencias de la Salud",
	"C":       "Ciencias",
	"IyA":     "Ingeniería y Arquitectura",
	"AyH":     "Artes y Humanidades",
	"AyH+C":   "Artes y Humanidades + Ciencias",
	"IyA+C":   "Ingeniería y Arquitectura + Ciencias",
	"AyH+SyJ": "Artes y Humanidades + CC. Sociales",
	"C+IyA":   "Ciencias + Ingeniería y Arquitectura",
	"C+SD":    "Ciencias + CC. de la Salud",
	"SD+SyJ":  "CC. de la Salud + CC. Sociales",
	"IyA+SyJ": "Ingeniería y Arquitectura + CC. Sociales",
	"C+SyJ":   "Ciencias + CC. Sociales",
}

// BranchName returns the full Spanish name of a branch code. Compound codes
// not in the vocabulary are named component by component; unknown single
// codes are returned as given.
func BranchName(code string) string {
	key := compactBranch(code)
	if name, ok := branchNames[key]; ok {
		return name
	}
	parts := BranchComponents(key)
	if len(parts) < 2 {
		return strings.TrimSpace(code)
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = BranchName(p)
	}
	return strings.Join(names, " + ")
}

// PrimaryBranch returns the first component of a possibly compound code.
func PrimaryBranch(code string) string {
	parts := BranchComponents(code)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// BranchComponents splits a compound code such as "C + SD" into its
// trimmed components.
func BranchComponents(code string) []string {
	var out []string
	for _, p := range strings.Split(code, "+") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// compactBranch removes all whitespace so "C + SD" and "C+SD" compare equal.
func compactBranch(code string) string {
	return strings.Join(strings.Fields(code), "")
}

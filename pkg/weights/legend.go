package weights

import (
	"regexp"
	"strings"
)

var (
	legendStart = regexp.MustCompile(`(?i)leyenda|ramas de conocimiento`)
	legendEnd   = regexp.MustCompile(`(?i)grado|titulación`)
	lineBreaks  = strings.NewReplacer("\r\n", "\n", "\r", "\n", `\n`, "\n")
	htmlBreak   = regexp.MustCompile(`(?i)<br\s*/?>`)
)

// LegendEntry is one "label: abbreviation: description" line.
type LegendEntry struct {
	Label        string `json:"label" yaml:"label"`
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
	Description  string `json:"description" yaml:"description"`
}

// Legend is the explanatory block some sources embed in the first header
// cell. When the block cannot be parsed line by line, Entries is nil and
// Raw holds the text as found.
type Legend struct {
	Entries []LegendEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Raw     string        `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Empty reports whether no legend was found.
func (l Legend) Empty() bool { return len(l.Entries) == 0 && l.Raw == "" }

// Formatted renders the legend for a side panel, one entry per line.
func (l Legend) Formatted() string {
	if len(l.Entries) == 0 {
		return l.Raw
	}
	var b strings.Builder
	for i, e := range l.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Abbreviation)
		b.WriteString(" - ")
		b.WriteString(e.Description)
		if e.Label != "" {
			b.WriteString(" (")
			b.WriteString(e.Label)
			b.WriteString(")")
		}
	}
	return b.String()
}

// ParseLegend extracts the legend from a header cell. The second result is
// false when the cell carries no start marker. A block with any malformed
// line degrades to raw text instead of failing.
func ParseLegend(cell string) (Legend, bool) {
	loc := legendStart.FindStringIndex(cell)
	if loc == nil {
		return Legend{}, false
	}
	body := cell[loc[1]:]
	if end := legendEnd.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}
	body = lineBreaks.Replace(htmlBreak.ReplaceAllString(body, "\n"))
	body = strings.TrimSpace(body)

	lines := strings.Split(body, "\n")
	// The rest of the marker line is a title unless it is already an entry.
	if len(lines) > 1 && strings.Count(lines[0], ":") < 2 {
		lines = lines[1:]
	}
	var entries []LegendEntry
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			return Legend{Raw: strings.TrimSpace(body)}, true
		}
		e := LegendEntry{
			Label:        strings.TrimSpace(parts[0]),
			Abbreviation: strings.TrimSpace(parts[1]),
			Description:  strings.TrimSpace(parts[2]),
		}
		if e.Abbreviation == "" || e.Description == "" {
			return Legend{Raw: strings.TrimSpace(body)}, true
		}
		entries = append(entries, e)
	}
	return Legend{Entries: entries}, true
}

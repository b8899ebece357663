package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pondera/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, counted electives
	colorYellow = lipgloss.Color("220") // warnings, mid-band coefficients
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // headers
	colorDim    = lipgloss.Color("240") // muted text, zero coefficients
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// statsLine summarizes a render on one line.
func statsLine(s pipeline.Stats, cached bool) string {
	parts := []string{
		fmt.Sprintf("%d rows", s.Rows),
		fmt.Sprintf("%d+%d subjects", s.FirstYear, s.SecondYear),
		fmt.Sprintf("%d programs", s.Programs),
		fmt.Sprintf("%d edges", s.Edges),
	}
	if s.Truncated > 0 {
		parts = append(parts, fmt.Sprintf("%d capped", s.Truncated))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	parts = append(parts, status)
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func printStats(s pipeline.Stats, cached bool) {
	fmt.Println(statsLine(s, cached))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

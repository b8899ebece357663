package flow

// Node and edge colors.
const (
	ColorFirstYear = "#E6E6FA"
	ColorProgram   = "#FFDAB9"
	ColorFocus     = "#FFD700"
	ColorPrecursor = "#6A5ACD"
	ColorZeroEdge  = "#D3D3D3"

	secondYearAlpha = "BF"
)

// tab20 is the 20-color qualitative palette used for second-year subjects.
var tab20 = [...]string{
	"#1F77B4", "#AEC7E8", "#FF7F0E", "#FFBB78", "#2CA02C",
	"#98DF8A", "#D62728", "#FF9896", "#9467BD", "#C5B0D5",
	"#8C564B", "#C49C94", "#E377C2", "#F7B6D2", "#7F7F7F",
	"#C7C7C7", "#BCBD22", "#DBDB8D", "#17BECF", "#9EDAE5",
}

// subjectColor returns the palette color for the i-th of n active subjects,
// sampling the palette evenly so few subjects still get distinct hues.
func subjectColor(i, n int) string {
	if n <= 1 {
		return tab20[0]
	}
	idx := i * len(tab20) / (n - 1)
	if idx >= len(tab20) {
		idx = len(tab20) - 1
	}
	return tab20[idx]
}

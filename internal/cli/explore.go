package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/weights"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	layerTitles  = [...]string{"1º Bachillerato", "2º Bachillerato", "Grados"}
)

// =============================================================================
// FocusListModel - Interactive focus node selection
// =============================================================================

// FocusListModel is the bubbletea model for picking a focus node. Tab
// cycles through the three layers; typing filters by name.
type FocusListModel struct {
	Nodes    [3][]flow.NodeID
	Weights  map[flow.NodeID]string // second column, e.g. the column sum
	Layer    flow.Layer
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *flow.NodeID
}

// NewFocusListModel groups targets by layer. Subjects show how many
// programs weight them.
func NewFocusListModel(t *weights.Table, targets []flow.NodeID) FocusListModel {
	m := FocusListModel{Height: 15, Weights: make(map[flow.NodeID]string, len(targets))}
	for _, id := range targets {
		m.Nodes[id.Layer] = append(m.Nodes[id.Layer], id)
		switch id.Layer {
		case flow.SecondYear:
			m.Weights[id] = fmt.Sprintf("%d grados", t.Where(func(r weights.Row) bool { return r.Get(id.Name) > 0 }).Len())
		case flow.DegreeProgram:
			if r, ok := t.Row(id.Name); ok {
				m.Weights[id] = r.Branch
			}
		}
	}
	for l := range m.Nodes {
		if len(m.Nodes[l]) > 0 {
			m.Layer = flow.Layer(l)
			break
		}
	}
	return m
}

// visible returns the nodes of the current layer that match the filter.
func (m FocusListModel) visible() []flow.NodeID {
	if m.Filter == "" {
		return m.Nodes[m.Layer]
	}
	needle := strings.ToLower(m.Filter)
	var out []flow.NodeID
	for _, id := range m.Nodes[m.Layer] {
		if strings.Contains(strings.ToLower(id.Label()), needle) {
			out = append(out, id)
		}
	}
	return out
}

func (m FocusListModel) Init() tea.Cmd {
	return nil
}

func (m FocusListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.Layer = (m.Layer + 1) % 3
			m.Cursor, m.Offset = 0, 0
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.visible())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyBackspace:
			if r := []rune(m.Filter); len(r) > 0 {
				m.Filter = string(r[:len(r)-1])
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyEnter:
			vis := m.visible()
			if len(vis) == 0 {
				return m, nil
			}
			id := vis[m.Cursor]
			m.Selected = &id
			return m, tea.Quit
		case tea.KeySpace:
			m.Filter += " "
			m.Cursor, m.Offset = 0, 0
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(5, msg.Height-8)
	}
	return m, nil
}

func (m FocusListModel) View() string {
	var b strings.Builder

	var tabs []string
	for l, title := range layerTitles {
		label := fmt.Sprintf(" %s (%d) ", title, len(m.Nodes[l]))
		if flow.Layer(l) == m.Layer {
			tabs = append(tabs, StyleTitle.Render(label))
		} else {
			tabs = append(tabs, listDimStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, listDimStyle.Render("│")))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab layer  type to filter  ⏎ select  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("/" + m.Filter))
	}
	b.WriteString("\n")

	vis := m.visible()
	end := min(m.Offset+m.Height, len(vis))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, vis[i].Label(), m.Weights[vis[i]]})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", layerTitles[m.Layer], "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(vis)), len(vis))))

	return b.String()
}

// =============================================================================
// explore command
// =============================================================================

func (c *CLI) exploreCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Pick a focus node interactively and render its diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			match, err := weights.ParseBranchMatch(ro.opts.Match)
			if err != nil {
				return err
			}
			scope := t.FilterBranch(ro.opts.Branch, match).FilterPrograms(ro.opts.Programs...)
			targets := flow.FocusTargets(scope, flow.DefaultPrecursors())
			if len(targets) == 0 {
				printWarning("No hay datos para mostrar con los filtros seleccionados")
				return nil
			}

			final, err := tea.NewProgram(NewFocusListModel(scope, targets), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			sel := final.(FocusListModel).Selected
			if sel == nil {
				return nil
			}

			if err := c.applyRenderDefaults(cmd, &ro.opts); err != nil {
				return err
			}
			ro.opts.Focus = sel.Key()
			ro.opts.Formats = []string{ro.formats}
			if err := c.runRender(cmd.Context(), &ro); err != nil {
				return err
			}
			printNextStep("Re-render with", fmt.Sprintf("pondera render --focus %q -f %s", sel.Key(), ro.formats))
			return nil
		},
	}

	diagramFlags(cmd, &ro.opts)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "svg", "output format: svg, png, jpg or dot")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

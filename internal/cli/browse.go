package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/pkg/document"
	"github.com/matzehuels/scribe/pkg/render"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeBlockStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	treeLineStyle     = lipgloss.NewStyle().Foreground(colorGray)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	previewStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Explore a document interactively",
		Long: `Explore a document as a collapsible tree, with a preview of the
rendered text for the selected element.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Import(args[0])
			if err != nil {
				return err
			}
			opts := c.settings().PipelineOptions()
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			p := tea.NewProgram(NewBrowseModel(doc, opts.IndentUnit),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	addIndentFlags(cmd)
	return cmd
}

// =============================================================================
// BrowseModel - Collapsible document tree
// =============================================================================

type browseRow struct {
	elem  render.Element
	depth int
}

// BrowseModel is the bubbletea model for the browse command.
type BrowseModel struct {
	Cursor int
	Offset int
	Height int
	Width  int

	doc       *document.Document
	unit      string
	collapsed map[*render.Block]bool
	rows      []browseRow
}

// NewBrowseModel creates a model with every block expanded. Previews are
// indented with unit.
func NewBrowseModel(doc *document.Document, unit string) BrowseModel {
	m := BrowseModel{
		Height:    20,
		Width:     80,
		doc:       doc,
		unit:      unit,
		collapsed: make(map[*render.Block]bool),
	}
	m.rebuild()
	return m
}

// rebuild flattens the visible part of the tree into rows.
func (m *BrowseModel) rebuild() {
	m.rows = nil
	for _, root := range m.doc.Elements() {
		_ = render.Walk(root, func(e render.Element, depth int) error {
			m.rows = append(m.rows, browseRow{elem: e, depth: depth})
			if b, ok := e.(*render.Block); ok && m.collapsed[b] {
				return render.SkipChildren
			}
			return nil
		})
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

func (m *BrowseModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the element under the cursor, or nil for an empty document.
func (m BrowseModel) Selected() render.Element {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.Cursor].elem
}

// Visible returns the number of rows currently shown.
func (m BrowseModel) Visible() int { return len(m.rows) }

func (m BrowseModel) selectedBlock() (*render.Block, bool) {
	b, ok := m.Selected().(*render.Block)
	if !ok || b.Len() == 0 {
		return nil, false
	}
	return b, true
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "enter", " ", "space":
			if b, ok := m.selectedBlock(); ok {
				m.collapsed[b] = !m.collapsed[b]
				m.rebuild()
			}
		case "right", "l":
			if b, ok := m.selectedBlock(); ok && m.collapsed[b] {
				delete(m.collapsed, b)
				m.rebuild()
			}
		case "left", "h":
			if b, ok := m.selectedBlock(); ok && !m.collapsed[b] {
				m.collapsed[b] = true
				m.rebuild()
				break
			}
			m.Cursor = m.parent(m.Cursor)
		case "e":
			clear(m.collapsed)
			m.rebuild()
		case "c":
			m.collapseAll()
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

// parent returns the row index of the block enclosing row i, or i for a root.
func (m BrowseModel) parent(i int) int {
	if i >= len(m.rows) {
		return i
	}
	depth := m.rows[i].depth
	for j := i - 1; j >= 0; j-- {
		if m.rows[j].depth < depth {
			return j
		}
	}
	return i
}

// collapseAll folds every non-empty block and moves the cursor to the root
// that contained it.
func (m *BrowseModel) collapseAll() {
	var root render.Element
	for i := m.Cursor; i >= 0 && len(m.rows) > 0; i-- {
		if m.rows[i].depth == 0 {
			root = m.rows[i].elem
			break
		}
	}
	for _, e := range m.doc.Elements() {
		_ = render.Walk(e, func(e render.Element, _ int) error {
			if b, ok := e.(*render.Block); ok && b.Len() > 0 {
				m.collapsed[b] = true
			}
			return nil
		})
	}
	m.rebuild()
	for i, r := range m.rows {
		if r.elem == root {
			m.Cursor = i
			break
		}
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Document"))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ⏎ toggle  ←/→ fold  e/c expand/collapse all  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(treeDimStyle.Render("  (empty document)"))
		return b.String()
	}

	treeWidth := max(m.Width/2, 20)
	tree := lipgloss.NewStyle().Width(treeWidth).Render(m.treeView())
	preview := previewStyle.Width(max(m.Width-treeWidth-4, 20)).Render(m.preview())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tree, preview))
	b.WriteString("\n\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

func (m BrowseModel) treeView() string {
	end := min(m.Offset+m.Height, len(m.rows))
	lines := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		var label string
		style := treeLineStyle
		switch e := r.elem.(type) {
		case *render.Block:
			style = treeBlockStyle
			switch {
			case e.Len() == 0:
				label = "  " + e.Name() + " {}"
			case m.collapsed[e]:
				label = "+ " + e.Name() + treeDimStyle.Render(fmt.Sprintf(" (%d)", e.Len()))
			default:
				label = "- " + e.Name()
			}
		case *render.Line:
			label = "  " + e.Text()
		}
		if i == m.Cursor {
			style = treeSelectedStyle
		}
		lines = append(lines, cursor+strings.Repeat("  ", r.depth)+style.Render(label))
	}
	return strings.Join(lines, "\n")
}

// preview renders the selected element, clipped to the pane height.
func (m BrowseModel) preview() string {
	out, err := render.Render(m.Selected(), render.WithIndentUnit(m.unit))
	if err != nil {
		return styleIconError.Render(iconError) + " " + err.Error()
	}
	lines := strings.Split(out, "\n")
	if len(lines) > m.Height {
		lines = append(lines[:m.Height-1], treeDimStyle.Render(fmt.Sprintf("… %d more lines", len(lines)-m.Height+1)))
	}
	return strings.Join(lines, "\n")
}

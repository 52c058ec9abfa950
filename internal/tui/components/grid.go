package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/akiba/internal/search"
	"github.com/mmcdole/akiba/internal/tui/styles"
)

// Cell is one grid entry
type Cell struct {
	ID       int
	Title    string
	Subtitle string
	ImageURL string
}

// Layout constants for grid cells
const (
	// Border adds 1 char on each side, padding 1 more
	CellFrameWidth = 4
	// Title + subtitle + top/bottom border
	CellHeight = 4

	MinCellWidth = 12
)

// Grid is a column-wrapped list of cells with fuzzy filtering
type Grid struct {
	cells   []Cell
	columns int
	cursor  int // index into the visible (filtered) cells
	offset  int // first visible row
	width   int
	height  int

	filterInput  textinput.Model
	filterActive bool
	filteredIdx  []int // indices into cells; nil when no filter is applied
}

// NewGrid creates an empty grid with the given column count
func NewGrid(columns int) Grid {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.Placeholder = "filter"
	ti.CharLimit = 64

	g := Grid{filterInput: ti}
	g.SetColumns(columns)
	return g
}

// SetCells replaces the cells, keeping the cursor in range
func (g *Grid) SetCells(cells []Cell) {
	g.cells = cells
	if g.filterActive {
		g.applyFilter()
	}
	g.clampCursor()
}

// SetColumns sets the column count (at least 1)
func (g *Grid) SetColumns(n int) {
	if n < 1 {
		n = 1
	}
	g.columns = n
	g.ensureVisible()
}

// Columns returns the column count
func (g Grid) Columns() int { return g.columns }

// SetSize sets the render area
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.ensureVisible()
}

// Len returns the number of visible cells
func (g Grid) Len() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.cells)
}

// Cursor returns the selected visible index
func (g Grid) Cursor() int { return g.cursor }

// Selected returns the selected cell
func (g Grid) Selected() (Cell, bool) {
	if g.Len() == 0 {
		return Cell{}, false
	}
	return g.cells[g.mapIndex(g.cursor)], true
}

// IsFiltering reports whether the filter input has focus
func (g Grid) IsFiltering() bool {
	return g.filterActive && g.filterInput.Focused()
}

// StartFilter focuses the filter input
func (g *Grid) StartFilter() tea.Cmd {
	g.filterActive = true
	return g.filterInput.Focus()
}

// ClearFilter drops the filter and shows every cell
func (g *Grid) ClearFilter() {
	g.filterActive = false
	g.filterInput.Blur()
	g.filterInput.SetValue("")
	g.filteredIdx = nil
	g.cursor = 0
	g.offset = 0
}

func (g *Grid) applyFilter() {
	query := g.filterInput.Value()
	if strings.TrimSpace(query) == "" {
		g.filteredIdx = nil
		return
	}

	titles := make([]string, len(g.cells))
	for i, c := range g.cells {
		titles[i] = c.Title
	}

	matches := search.Filter(query, titles)
	g.filteredIdx = make([]int, len(matches))
	for i, m := range matches {
		g.filteredIdx[i] = m.Index
	}

	// Reset cursor to first match
	g.cursor = 0
	g.offset = 0
}

func (g Grid) mapIndex(i int) int {
	if g.filteredIdx != nil {
		return g.filteredIdx[i]
	}
	return i
}

// Move shifts the cursor by dx columns and dy rows
func (g *Grid) Move(dx, dy int) {
	n := g.Len()
	if n == 0 {
		return
	}
	next := g.cursor + dx + dy*g.columns
	if next < 0 || next >= n {
		return
	}
	g.cursor = next
	g.ensureVisible()
}

func (g *Grid) clampCursor() {
	if n := g.Len(); g.cursor >= n {
		g.cursor = max(n-1, 0)
	}
	g.ensureVisible()
}

func (g Grid) visibleRows() int {
	avail := g.height
	if g.filterActive {
		avail--
	}
	return max(avail/CellHeight, 1)
}

func (g *Grid) ensureVisible() {
	row := g.cursor / max(g.columns, 1)
	rows := g.visibleRows()
	if row < g.offset {
		g.offset = row
	}
	if row >= g.offset+rows {
		g.offset = row - rows + 1
	}
}

// Update handles filter typing; navigation keys are routed by the parent
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.IsFiltering() {
		return g, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			g.ClearFilter()
			return g, nil
		case "enter":
			// Accept filter, blur input to allow navigation
			g.filterInput.Blur()
			return g, nil
		}
	}

	var cmd tea.Cmd
	g.filterInput, cmd = g.filterInput.Update(msg)
	g.applyFilter()
	return g, cmd
}

// View renders the component
func (g Grid) View() string {
	var b strings.Builder

	if g.filterActive {
		b.WriteString(g.filterInput.View())
		if g.filteredIdx != nil {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.Len(), len(g.cells))))
		}
		b.WriteString("\n")
	}

	if g.Len() == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing here yet."))
		return b.String()
	}

	cellWidth := max(g.width/g.columns-CellFrameWidth, MinCellWidth)
	rows := g.visibleRows()
	var lines []string
	for row := g.offset; row < g.offset+rows; row++ {
		var rendered []string
		for col := 0; col < g.columns; col++ {
			i := row*g.columns + col
			if i >= g.Len() {
				break
			}
			rendered = append(rendered, g.renderCell(g.cells[g.mapIndex(i)], i == g.cursor, cellWidth))
		}
		if len(rendered) == 0 {
			break
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return b.String()
}

func (g Grid) renderCell(c Cell, selected bool, width int) string {
	style := styles.GridCellStyle
	title := styles.SubtitleStyle.Render(styles.Truncate(c.Title, width))
	if selected {
		style = styles.GridCellSelectedStyle
		title = styles.TitleStyle.Render(styles.Truncate(c.Title, width))
	}
	sub := styles.DimStyle.Render(styles.Truncate(c.Subtitle, width))
	return style.Width(width + 2).Render(title + "\n" + sub)
}

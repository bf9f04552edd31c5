package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listParentStyle   = lipgloss.NewStyle().Italic(true).Foreground(colorGray)
	listSplitStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// TreeModel - Interactive tree browser
// =============================================================================

// treeRow is one visible line of the browser.
type treeRow struct {
	id     string
	prefix string
}

// TreeModel is the bubbletea model for browsing a laid out placement tree.
// Subtrees collapse and expand in place; the panel below the outline shows
// the selected member.
type TreeModel struct {
	Nodes    []layout.Node
	Cursor   int
	Height   int
	Offset   int
	Expanded map[string]bool

	index    map[string]int
	children map[string][]string
	roots    []string
	rows     []treeRow
}

// NewTreeModel creates a browser over l with the top two ranks expanded.
func NewTreeModel(l graph.Layout) TreeModel {
	m := TreeModel{
		Nodes:    l.Nodes,
		Height:   15,
		Expanded: make(map[string]bool),
		index:    make(map[string]int, len(l.Nodes)),
		children: make(map[string][]string),
	}
	hasParent := make(map[string]bool, len(l.Nodes))
	for i, n := range l.Nodes {
		m.index[n.ID] = i
	}
	for _, e := range l.Edges {
		m.children[e.Source] = append(m.children[e.Source], e.Target)
		hasParent[e.Target] = true
	}
	for _, n := range l.Nodes {
		if !hasParent[n.ID] {
			m.roots = append(m.roots, n.ID)
		}
		if n.Rank <= 0 {
			m.Expanded[n.ID] = true
		}
	}
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the tree into rows.
func (m *TreeModel) rebuild() {
	m.rows = make([]treeRow, 0, len(m.rows))
	var walk func(id, prefix string, last, top bool)
	walk = func(id, prefix string, last, top bool) {
		branch, indent := branchGlyphs(last, top)
		m.rows = append(m.rows, treeRow{id: id, prefix: prefix + branch})
		if !m.Expanded[id] {
			return
		}
		kids := m.children[id]
		for k, c := range kids {
			walk(c, prefix+indent, k == len(kids)-1, false)
		}
	}
	for _, r := range m.roots {
		walk(r, "", true, true)
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
	m.clampOffset()
}

func branchGlyphs(last, top bool) (branch, indent string) {
	switch {
	case top:
		return "", ""
	case last:
		return "└─ ", "   "
	default:
		return "├─ ", "│  "
	}
}

func (m *TreeModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the node under the cursor.
func (m TreeModel) Selected() (layout.Node, bool) {
	if len(m.rows) == 0 {
		return layout.Node{}, false
	}
	return m.Nodes[m.index[m.rows[m.Cursor].id]], true
}

// Visible returns the ids of the rows currently shown, top to bottom.
func (m TreeModel) Visible() []string {
	ids := make([]string, len(m.rows))
	for i, r := range m.rows {
		ids[i] = r.id
	}
	return ids
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		case "right", "l":
			if id := m.current(); len(m.children[id]) > 0 {
				m.Expanded[id] = true
			}
		case "left", "h":
			m.collapseOrParent()
		case "enter", " ":
			if id := m.current(); len(m.children[id]) > 0 {
				m.Expanded[id] = !m.Expanded[id]
			}
		case "e":
			for id := range m.children {
				m.Expanded[id] = true
			}
		case "c":
			for id := range m.Expanded {
				delete(m.Expanded, id)
			}
			m.Cursor = 0
		}
		m.rebuild()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampOffset()
	}
	return m, nil
}

func (m TreeModel) current() string {
	if len(m.rows) == 0 {
		return ""
	}
	return m.rows[m.Cursor].id
}

// collapseOrParent collapses the current subtree, or moves to the parent row
// when it is already collapsed.
func (m *TreeModel) collapseOrParent() {
	id := m.current()
	if m.Expanded[id] && len(m.children[id]) > 0 {
		delete(m.Expanded, id)
		return
	}
	for i := m.Cursor - 1; i >= 0; i-- {
		for _, c := range m.children[m.rows[i].id] {
			if c == id {
				m.Cursor = i
				return
			}
		}
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Placement Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ collapse/expand  ⏎ toggle  e/c all  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		n := m.Nodes[m.index[r.id]]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		if len(m.children[r.id]) > 0 {
			marker = "+"
			if m.Expanded[r.id] {
				marker = "-"
			}
		}

		label := n.Data.Label
		if n.Data.Kind == layout.KindMember && n.Data.PackageLabel != "" {
			label += "  " + n.Data.PackageLabel
		}
		line := fmt.Sprintf("%s%s%s %s", cursor, listDimStyle.Render(r.prefix), marker, label)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.Data.Kind != layout.KindMember:
			b.WriteString(listParentStyle.Render(line))
		case n.Data.IsSplitSponsor:
			b.WriteString(listSplitStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	b.WriteString("\n")

	if n, ok := m.Selected(); ok {
		b.WriteString(detailBoxStyle.Render(nodeDetail(n)))
		b.WriteString("\n")
	}
	return b.String()
}

// nodeDetail renders the selected member's metadata as a two-column table.
func nodeDetail(n layout.Node) string {
	rows := [][]string{
		{"Name", n.Data.Label},
		{"ID", n.ID},
		{"Kind", string(n.Data.Kind)},
		{"Rank", fmt.Sprintf("%d", n.Rank)},
	}
	if n.Data.Kind == layout.KindMember {
		rows = append(rows,
			[]string{"Package", layout.FormatUSD(n.Data.PackageValue)},
			[]string{"Direct", fmt.Sprintf("%d", n.Data.DirectCount)},
			[]string{"Downline", fmt.Sprintf("%d", n.Data.DownlineCount)},
		)
	}
	if n.Data.IsSplitSponsor {
		split := "yes"
		if n.Data.OriginalSponsorID != "" {
			split = "from " + n.Data.OriginalSponsorID
		}
		rows = append(rows, []string{"Split", split})
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return StyleValue
		})
	return t.Render()
}

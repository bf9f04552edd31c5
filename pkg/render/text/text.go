// Package text renders placement tree layouts as indented terminal outlines.
//
// Styling uses lipgloss and degrades to plain text when the output is not a
// terminal. [Options.Plain] turns styling off entirely, which is what file
// output and the pipeline's "txt" format use.
package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sagenex/teamtree/pkg/layout"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

var (
	styleName    = lipgloss.NewStyle().Bold(true)
	styleID      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stylePackage = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleSplit   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleParent  = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Italic(true)
	styleBranch  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Options configures [Render].
type Options struct {
	// Plain disables ANSI styling.
	Plain bool
	// HidePackages omits package values.
	HidePackages bool
	// MaxDepth limits the outline to this many ranks below the topmost node.
	// Zero means unlimited.
	MaxDepth int
}

// Render writes l as a tree outline, one member per line, following edge
// order. The topmost node (the parent reference, when present) is the first
// line.
func Render(l layout.Layout, opts Options) string {
	children := make(map[string][]string, len(l.Nodes))
	hasParent := make(map[string]bool, len(l.Nodes))
	for _, e := range l.Edges {
		children[e.Source] = append(children[e.Source], e.Target)
		hasParent[e.Target] = true
	}
	idx := l.NodeIndex()

	style := func(s lipgloss.Style, v string) string {
		if opts.Plain {
			return v
		}
		return s.Render(v)
	}

	line := func(n layout.Node) string {
		nameStyle := styleName
		if n.Data.Kind != layout.KindMember {
			nameStyle = styleParent
		}
		parts := []string{style(nameStyle, n.Data.Label)}
		if n.Data.Label != n.ID {
			parts = append(parts, style(styleID, "("+n.ID+")"))
		}
		if !opts.HidePackages && n.Data.Kind == layout.KindMember {
			parts = append(parts, style(stylePackage, n.Data.PackageLabel))
		}
		if n.Data.IsSplitSponsor {
			badge := "[split]"
			if n.Data.OriginalSponsorID != "" {
				badge = fmt.Sprintf("[split from %s]", n.Data.OriginalSponsorID)
			}
			parts = append(parts, style(styleSplit, badge))
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	var walk func(id, prefix string, last bool, depth int, top bool)
	walk = func(id, prefix string, last bool, depth int, top bool) {
		i, ok := idx[id]
		if !ok {
			return
		}
		branch, indent := branchMid, indentMid
		if last {
			branch, indent = branchLast, indentLast
		}
		if top {
			branch, indent = "", ""
		}
		b.WriteString(style(styleBranch, prefix+branch))
		b.WriteString(line(l.Nodes[i]))
		b.WriteByte('\n')

		kids := children[id]
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			if len(kids) > 0 {
				b.WriteString(style(styleBranch, prefix+indent+branchLast))
				b.WriteString(style(styleID, fmt.Sprintf("… %d more", l.Nodes[i].Data.DownlineCount)))
				b.WriteByte('\n')
			}
			return
		}
		for k, c := range kids {
			walk(c, prefix+indent, k == len(kids)-1, depth+1, false)
		}
	}

	for _, n := range l.Nodes {
		if !hasParent[n.ID] {
			walk(n.ID, "", true, 0, true)
		}
	}
	return b.String()
}

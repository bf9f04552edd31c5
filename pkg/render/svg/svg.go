package svg

import (
	"bytes"
	"fmt"

	"github.com/sagenex/teamtree/pkg/layout"
)

type textLine struct {
	text   string
	size   float64
	weight string
	color  string
}

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	title      string
	packages   bool
	background string
	highlight  map[string]bool
}

// WithTitle adds a heading above the tree and sets the document title.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// WithPackages toggles the package value line on member cards (default on).
func WithPackages(show bool) Option { return func(r *renderer) { r.packages = show } }

// WithBackground fills the canvas with a CSS colour. Empty means transparent.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithHighlight emphasises the cards of the given member ids.
func WithHighlight(ids ...string) Option {
	return func(r *renderer) {
		for _, id := range ids {
			r.highlight[id] = true
		}
	}
}

// Render draws l as a standalone SVG document.
func Render(l layout.Layout, opts ...Option) []byte {
	r := renderer{packages: true, highlight: make(map[string]bool)}
	for _, opt := range opts {
		opt(&r)
	}

	offset := 0.0
	if r.title != "" {
		offset = titleHeight
	}
	width, height := l.Width, l.Height+offset

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Inter, Helvetica, Arial, sans-serif">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-size="18" font-weight="600" fill="#0f172a">%s</text>`+"\n",
			width/2, titleHeight*0.65, escape(r.title))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(0 %.1f)">`+"\n", offset)
	r.renderEdges(&buf, l)
	for _, n := range l.Nodes {
		r.renderCard(&buf, n)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderEdges(buf *bytes.Buffer, l layout.Layout) {
	idx := l.NodeIndex()
	for _, e := range l.Edges {
		si, okS := idx[e.Source]
		ti, okT := idx[e.Target]
		if !okS || !okT {
			continue
		}
		src, dst := l.Nodes[si], l.Nodes[ti]
		x1, y1 := src.Center().X, src.Bottom()
		x2, y2 := dst.Center().X, dst.Position.Y
		mid := (y1 + y2) / 2
		fmt.Fprintf(buf, `    <path id="%s" class="edge" d="M %.1f %.1f V %.1f H %.1f V %.1f" fill="none" stroke="#94a3b8" stroke-width="1.5"/>`+"\n",
			escape(e.ID), x1, y1, mid, x2, y2)
	}
}

func (r *renderer) renderCard(buf *bytes.Buffer, n layout.Node) {
	p := paletteFor(n.Data.Kind)
	stroke, strokeWidth := p.stroke, 1.5
	if r.highlight[n.ID] {
		stroke, strokeWidth = "#f59e0b", 3
	}

	fmt.Fprintf(buf, `    <g class="card %s" id="node-%s">`+"\n", n.Data.Kind, escape(n.ID))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s" stroke="%s" stroke-width="%.1f"`,
		n.Position.X, n.Position.Y, n.Width, n.Height, cardRadius, p.fill, stroke, strokeWidth)
	if p.dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, p.dash)
	}
	buf.WriteString("/>\n")

	inner := n.Width - 2*cardPadding
	if n.Data.IsSplitSponsor {
		inner -= badgeWidth + 4
	}
	x := n.Position.X + cardPadding
	lines := []textLine{
		{truncate(n.Data.Label, inner, nameFontSize), nameFontSize, "600", p.text},
		{truncate(n.Data.MemberID, n.Width-2*cardPadding, metaFontSize), metaFontSize, "400", p.muted},
	}
	if r.packages && n.Data.Kind == layout.KindMember {
		lines = append(lines, textLine{n.Data.PackageLabel, metaFontSize, "500", p.text})
	}

	y := n.Position.Y + cardPadding
	for _, ln := range lines {
		y += ln.size + 6
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
			x, y, ln.size, ln.weight, ln.color, escape(ln.text))
	}

	if n.Data.IsSplitSponsor {
		bx := n.Position.X + n.Width - cardPadding - badgeWidth
		by := n.Position.Y + cardPadding
		buf.WriteString(`      <g class="badge">`)
		if n.Data.OriginalSponsorID != "" {
			fmt.Fprintf(buf, "<title>Originally sponsored by %s</title>", escape(n.Data.OriginalSponsorID))
		}
		fmt.Fprintf(buf, `<rect x="%.1f" y="%.1f" width="%.0f" height="%.0f" rx="4" fill="#fef3c7" stroke="#d97706"/>`,
			bx, by, badgeWidth, badgeHeight)
		fmt.Fprintf(buf, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="10" font-weight="700" fill="#92400e">SPLIT</text>`,
			bx+badgeWidth/2, by+13)
		buf.WriteString("</g>\n")
	}
	buf.WriteString("    </g>\n")
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/render"
)

const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the member id and package value in node labels.
	// When false, only the display name is shown.
	Detailed bool
	// PinPositions writes each node's layout position as a pinned pos
	// attribute. Graphviz's dot engine ignores it; neato -n honours it.
	PinPositions bool
}

// ToDOT converts a layout to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Parent references are drawn dashed, the company root inverted and split
// sponsors with an amber outline.
func ToDOT(l layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#94a3b8\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		if opts.PinPositions {
			c := n.Center()
			attrs = append(attrs,
				fmt.Sprintf("pos=\"%.1f,%.1f!\"", c.X, l.Height-c.Y),
				fmt.Sprintf("width=%.3f", n.Width/pointsPerInch),
				fmt.Sprintf("height=%.3f", n.Height/pointsPerInch),
				"fixedsize=true",
			)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}
	parts := []string{n.Data.Label}
	if n.Data.MemberID != n.Data.Label {
		parts = append(parts, n.Data.MemberID)
	}
	if n.Data.Kind == layout.KindMember {
		parts = append(parts, n.Data.PackageLabel)
	}
	if n.Data.IsSplitSponsor && n.Data.OriginalSponsorID != "" {
		parts = append(parts, "split from "+n.Data.OriginalSponsorID)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n layout.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Data.Kind {
	case layout.KindParent:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=\"#f1f5f9\"")
	case layout.KindCompanyRoot:
		attrs = append(attrs, "fillcolor=\"#0f172a\"", "fontcolor=white", "color=\"#0f172a\"")
	}
	if n.Data.IsSplitSponsor {
		attrs = append(attrs, "color=\"#d97706\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// Package nodelink renders placement tree layouts as Graphviz diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// members appear as boxes connected by lines. It's an alternative to the
// card renderer in pkg/render/svg for cases where a DOT file is wanted, for
// example to post-process the tree with external Graphviz tools.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include id, package value and split origin
//   - PinPositions: node positions from the layout are written as pinned
//     pos attributes (in points, y flipped to Graphviz's bottom-up axis)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools (neato -n keeps the
//     pinned positions, dot recomputes its own tree layout)
//   - Customized before rendering
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes, matching the card renderer's vertical orientation.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

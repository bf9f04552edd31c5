// Package render provides visualization rendering for placement tree layouts.
//
// # Overview
//
// This package contains the rendering pipeline that turns a positioned
// [layout.Layout] into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Member card diagrams drawn straight from layout coordinates (in [svg])
//   - Graphviz node-link diagrams and DOT export (in [nodelink])
//   - Terminal outlines (in [text])
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both
// the svg and node-link renderers.
//
//	out := svg.Render(l, svg.WithTitle("Team"))
//	pdf, err := render.ToPDF(out)
//	png, err := render.ToPNG(out, 2.0)  // 2x scale
//
// When rsvg-convert is not installed both functions return an UNSUPPORTED
// error.
//
// [layout.Layout]: github.com/sagenex/teamtree/pkg/layout
// [svg]: github.com/sagenex/teamtree/pkg/render/svg
// [nodelink]: github.com/sagenex/teamtree/pkg/render/nodelink
// [text]: github.com/sagenex/teamtree/pkg/render/text
package render

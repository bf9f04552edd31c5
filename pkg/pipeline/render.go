package pipeline

import (
	"context"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/render/nodelink"
	"github.com/sagenex/teamtree/pkg/render/svg"
	"github.com/sagenex/teamtree/pkg/render/text"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, gl graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, gl, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format. opts must already carry render
// defaults.
func RenderFormat(ctx context.Context, gl graph.Layout, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	l := gl.ToLayout()

	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = graph.MarshalLayout(gl)
	case FormatTXT:
		data = []byte(text.Render(l, text.Options{Plain: true, HidePackages: opts.HidePackages}))
	case FormatDOT:
		data = []byte(toDOT(l, opts))
	case FormatSVG:
		if opts.IsNodelink() {
			data, err = nodelink.RenderSVG(ctx, toDOT(l, opts))
		} else {
			data = svg.Render(l, svgOptions(opts)...)
		}
	case FormatPNG:
		if opts.IsNodelink() {
			data, err = nodelink.RenderPNG(ctx, toDOT(l, opts), opts.Scale)
		} else {
			data, err = svg.RenderPNG(l, opts.Scale, svgOptions(opts)...)
		}
	case FormatPDF:
		if opts.IsNodelink() {
			data, err = nodelink.RenderPDF(ctx, toDOT(l, opts))
		} else {
			data, err = svg.RenderPDF(l, svgOptions(opts)...)
		}
	}
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}

func toDOT(l layout.Layout, opts Options) string {
	return nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed, PinPositions: true})
}

// svgOptions builds card renderer options from pipeline options.
func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if opts.Title != "" {
		out = append(out, svg.WithTitle(opts.Title))
	}
	if opts.HidePackages {
		out = append(out, svg.WithPackages(false))
	}
	if len(opts.Highlight) > 0 {
		out = append(out, svg.WithHighlight(opts.Highlight...))
	}
	return out
}

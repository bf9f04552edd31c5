package svg

import (
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/render"
)

// RenderPDF renders the layout as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(l layout.Layout, opts ...Option) ([]byte, error) {
	return render.ToPDF(Render(l, opts...))
}

// RenderPNG renders the layout as PNG via SVG conversion at the given scale.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(l layout.Layout, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(Render(l, opts...), scale)
}

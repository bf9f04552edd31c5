package svg

import (
	"bytes"
	"encoding/xml"
	"unicode/utf8"

	"github.com/sagenex/teamtree/pkg/layout"
)

const (
	cardRadius   = 10.0
	cardPadding  = 12.0
	nameFontSize = 15.0
	metaFontSize = 12.0
	charWidth    = 0.55 // average glyph width relative to font size
	badgeWidth   = 44.0
	badgeHeight  = 18.0
	titleHeight  = 36.0
)

type palette struct {
	fill, stroke, text, muted, dash string
}

var palettes = map[layout.Kind]palette{
	layout.KindMember:      {fill: "#ffffff", stroke: "#94a3b8", text: "#0f172a", muted: "#64748b"},
	layout.KindParent:      {fill: "#f1f5f9", stroke: "#64748b", text: "#334155", muted: "#64748b", dash: "6 4"},
	layout.KindCompanyRoot: {fill: "#0f172a", stroke: "#0f172a", text: "#f8fafc", muted: "#cbd5e1"},
}

func paletteFor(k layout.Kind) palette {
	if p, ok := palettes[k]; ok {
		return p
	}
	return palettes[layout.KindMember]
}

// truncate shortens s to fit width at the given font size.
func truncate(s string, width, fontSize float64) string {
	maxChars := max(3, int(width/(fontSize*charWidth)))
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	r := []rune(s)
	return string(r[:maxChars-2]) + ".."
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

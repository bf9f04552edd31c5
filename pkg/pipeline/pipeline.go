// Package pipeline provides the fetch → layout → render pipeline for teamtree.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// service. Centralizing it keeps both entry points consistent.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load the placement tree from the backend (or take a decoded one)
//  2. Layout: Compute positions for every member with [layout.Builder]
//  3. Render: Generate output in various formats (JSON, SVG, DOT, PNG, PDF, TXT)
//
// Layouts are recomputed on every run. Only rendered artifacts are cached,
// keyed by a hash of the serialized layout plus the render options.
//
// # Usage
//
//	client, _ := backend.NewClient(apiURL, backend.WithToken(token))
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, client, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	resp, err := runner.Fetch(ctx, client, opts)
//	l, err := runner.Layout(ctx, resp, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the raster scale factor for PNG output.
	DefaultScale = 2.0

	// DefaultRenderer is the default SVG renderer.
	DefaultRenderer = RendererCards
)

// Renderer names.
const (
	// RendererCards draws member cards at the computed layout positions.
	RendererCards = "cards"
	// RendererNodelink lets Graphviz lay out and draw a node-link diagram.
	RendererNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatTXT  = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatTXT:  true,
}

// ValidRenderers is the set of supported renderers.
var ValidRenderers = map[string]bool{
	RendererCards:    true,
	RendererNodelink: true,
}

var contentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatTXT:  "text/plain; charset=utf-8",
}

// ContentType returns the MIME type for an output format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Renderer     string   `json:"renderer,omitempty"`
	Title        string   `json:"title,omitempty"`
	HidePackages bool     `json:"hide_packages,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	Highlight    []string `json:"highlight,omitempty"`

	// Refresh bypasses the artifact cache for reads. Fresh renders are
	// still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Result holds the output of a pipeline execution.
type Result struct {
	Response   tree.Response
	Layout     graph.Layout
	LayoutHash string
	Artifacts  map[string][]byte
	Stats      Stats
	CacheInfo  CacheInfo
}

// Stats contains execution statistics.
type Stats struct {
	Members    int
	NodeCount  int
	EdgeCount  int
	Skipped    int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo contains information about artifact cache usage.
type CacheInfo struct {
	// RenderHit is true when every requested artifact came from the cache.
	RenderHit bool
	// Hits counts the artifacts served from the cache.
	Hits int
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format name is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (valid: %s)", format, validList(ValidFormats))
	}
	return nil
}

// ValidateFormats checks every format in the list.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRenderer checks that a renderer name is supported.
func ValidateRenderer(r string) error {
	if !ValidRenderers[r] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid renderer %q (valid: %s)", r, validList(ValidRenderers))
	}
	return nil
}

// ParseFormats splits a comma-separated list such as "svg,png", trimming
// blanks and lowercasing each entry.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func validList(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// ValidateAndSetDefaults fills defaults and validates every stage's options.
// This method is idempotent - calling it multiple times is safe.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout sets layout defaults and validates the geometry.
func (o *Options) ValidateForLayout() error {
	o.Layout.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Layout.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateRenderer(o.Renderer); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// IsNodelink returns true when Graphviz draws the SVG, PNG and PDF outputs.
func (o *Options) IsNodelink() bool {
	return o.Renderer == RendererNodelink
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:   format,
		Renderer: o.Renderer,
		Packages: !o.HidePackages,
		Detailed: o.Detailed,
	}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		// Title and highlight only reach the drawn formats.
		k.Title = o.Title
		k.Highlight = o.Highlight
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

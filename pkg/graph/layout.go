package graph

import (
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

// Version is the current layout format version.
const Version = 1

// =============================================================================
// Layout - Serialized Tree Layout
// =============================================================================

// Layout is the canonical serialization of a positioned placement tree.
type Layout struct {
	Version int `json:"version" bson:"version"`

	// Frame dimensions
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Geometry the layout was built with
	Options layout.Options `json:"options" bson:"options"`

	// Graph structure
	Nodes []layout.Node `json:"nodes" bson:"nodes"`
	Edges []layout.Edge `json:"edges" bson:"edges"`

	Stats Stats `json:"stats" bson:"stats"`
}

// Stats summarises the laid out tree.
type Stats struct {
	tree.Stats `bson:",inline"`

	Ranks     int      `json:"ranks" bson:"ranks"`
	Crossings int      `json:"crossings" bson:"crossings"`
	Skipped   []string `json:"skipped,omitempty" bson:"skipped,omitempty"`

	ParentDropped bool `json:"parentDropped,omitempty" bson:"parentDropped,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromLayout wraps a built layout for serialization. ts describes the tree
// the layout was built from.
func FromLayout(l layout.Layout, opts layout.Options, ts tree.Stats) Layout {
	opts.Logger = nil
	return Layout{
		Version: Version,
		Width:   l.Width,
		Height:  l.Height,
		Options: opts,
		Nodes:   l.Nodes,
		Edges:   l.Edges,
		Stats: Stats{
			Stats:     ts,
			Ranks:     l.Ranks,
			Crossings: l.Crossings,
			Skipped:   l.Skipped,

			ParentDropped: l.ParentDropped,
		},
	}
}

// ToLayout returns the in-memory layout for rendering.
func (l Layout) ToLayout() layout.Layout {
	return layout.Layout{
		Nodes:     l.Nodes,
		Edges:     l.Edges,
		Width:     l.Width,
		Height:    l.Height,
		Ranks:     l.Stats.Ranks,
		Crossings: l.Stats.Crossings,
		Skipped:   l.Stats.Skipped,

		ParentDropped: l.Stats.ParentDropped,
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks structural integrity: a supported version, unique node
// ids, positive node sizes and edges between existing nodes.
func (l Layout) Validate() error {
	if l.Version > Version {
		return errors.New(errors.ErrCodeInvalidLayout, "layout version %d is newer than supported version %d", l.Version, Version)
	}
	if l.Width < 0 || l.Height < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "negative frame size %vx%v", l.Width, l.Height)
	}

	ids := make(map[string]struct{}, len(l.Nodes))
	for i, n := range l.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidLayout, "node %d has no id", i)
		}
		if _, dup := ids[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidLayout, "duplicate node %q", n.ID)
		}
		if n.Width <= 0 || n.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "node %q has size %vx%v", n.ID, n.Width, n.Height)
		}
		ids[n.ID] = struct{}{}
	}

	for _, e := range l.Edges {
		if _, ok := ids[e.Source]; !ok {
			return errors.New(errors.ErrCodeInvalidLayout, "edge %q: unknown source %q", e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return errors.New(errors.ErrCodeInvalidLayout, "edge %q: unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}

package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/sagenex/teamtree/pkg/errors"
)

// Default geometry, in SVG user units.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 90.0
	DefaultNodeSep    = 25.0
	DefaultRankSep    = 80.0
	DefaultMargin     = 20.0
)

// Options configures a [Builder]. Zero values are replaced by the defaults.
type Options struct {
	NodeWidth  float64 `json:"node_width" toml:"node_width" bson:"node_width"`
	NodeHeight float64 `json:"node_height" toml:"node_height" bson:"node_height"`
	// NodeSep is the minimum horizontal gap between two nodes in one rank.
	NodeSep float64 `json:"node_sep" toml:"node_sep" bson:"node_sep"`
	// RankSep is the vertical gap between consecutive ranks.
	RankSep float64 `json:"rank_sep" toml:"rank_sep" bson:"rank_sep"`
	// Margin pads the layout on every side.
	Margin float64 `json:"margin" toml:"margin" bson:"margin"`

	// Strict turns skipped members into errors.
	Strict bool `json:"strict,omitempty" toml:"strict" bson:"strict,omitempty"`

	Logger *log.Logger `json:"-" toml:"-" bson:"-"`
}

// SetDefaults fills unset geometry with the package defaults.
func (o *Options) SetDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
}

// Validate rejects negative or degenerate geometry.
func (o Options) Validate() error {
	switch {
	case o.NodeWidth <= 0, o.NodeHeight <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "node size must be positive, got %vx%v", o.NodeWidth, o.NodeHeight)
	case o.NodeSep < 0:
		return errors.New(errors.ErrCodeInvalidInput, "node separation must not be negative, got %v", o.NodeSep)
	case o.RankSep < 0:
		return errors.New(errors.ErrCodeInvalidInput, "rank separation must not be negative, got %v", o.RankSep)
	case o.Margin < 0:
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative, got %v", o.Margin)
	}
	return nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

package cache

import (
	"strings"
	"time"
)

// TTLArtifact is how long rendered artifacts are kept.
const TTLArtifact = 7 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the layout with
	// the given content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every render option that changes the output bytes.
type ArtifactKeyOpts struct {
	Format    string   `json:"format"`
	Renderer  string   `json:"renderer,omitempty"`
	Title     string   `json:"title,omitempty"`
	Packages  bool     `json:"packages"`
	Detailed  bool     `json:"detailed,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	Highlight []string `json:"highlight,omitempty"`
}

// DefaultKeyer generates keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the layout hash together with the options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	opts.Format = strings.ToLower(opts.Format)
	return hashKey("artifact", layoutHash, opts)
}

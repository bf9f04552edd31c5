package pipeline

import (
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout lays out a tree response and wraps the result for
// serialization together with the tree's statistics.
//
// In strict mode the whole response is validated first, so a malformed tree
// fails with INVALID_TREE before any member is placed. Otherwise the builder
// skips unresolvable members and logs a warning for each.
func ComputeLayout(resp tree.Response, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	if resp.Tree == nil {
		return graph.Layout{}, errors.New(errors.ErrCodeInvalidTree, "response has no tree")
	}
	if opts.Layout.Strict {
		if err := resp.Validate(); err != nil {
			return graph.Layout{}, err
		}
	}

	lopts := opts.Layout
	if lopts.Logger == nil {
		lopts.Logger = opts.Logger
	}
	l, err := layout.NewBuilder(lopts).Build(resp.Tree, resp.Parent)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.FromLayout(l, lopts, tree.ComputeStats(resp.Tree)), nil
}

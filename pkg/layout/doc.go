// Package layout turns a placement tree into a positioned node/edge graph.
//
// # Overview
//
// [Builder.Build] takes the root of a [tree.Node] hierarchy and an optional
// [tree.ParentRef] and returns a [Layout]: one [Node] per member (plus one for
// the parent) with top-left coordinates and display data, and one [Edge] per
// placement (plus the parent-to-root edge).
//
//	l, err := layout.NewBuilder(layout.Options{}).Build(resp.Tree, resp.Parent)
//
// # Algorithm
//
// The builder registers every member in a row-based [dag.DAG], assigns ranks
// with a longest-path layering and then positions the graph top to bottom:
//
//   - Y grows by NodeHeight+RankSep per rank, so a child is always at least
//     RankSep below its parent.
//   - X comes from a tidy-tree pass. Each subtree is packed against the
//     per-depth contour of its left siblings, keeping at least NodeSep between
//     any two nodes in the same rank, and every parent is centred over its
//     first and last child.
//
// The parent reference is laid out as the topmost node, one rank above the
// root (rank -1). When its id is [tree.CompanyRootID] it is marked as the
// company root instead of a regular parent.
//
// # Failure Handling
//
// Input trees are expected to be valid (see [tree.ValidateTree]). When they
// are not, the default is to log and skip: a repeated id drops the later
// occurrence together with its subtree, and a graph node that cannot be
// mapped back to a member is left out of the result. The ids of everything
// dropped are listed in [Layout.Skipped]. A parent reference without an id,
// or naming a tree member, is dropped and flagged in [Layout.ParentDropped].
// With [Options.Strict] the builder returns an INVALID_TREE error instead.
//
// Build never mutates its inputs and always produces the same layout for the
// same tree.
package layout

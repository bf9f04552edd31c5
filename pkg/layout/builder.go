package layout

import (
	stderrors "errors"

	"github.com/sagenex/teamtree/pkg/dag"
	"github.com/sagenex/teamtree/pkg/dag/transform"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/tree"
)

// Builder lays out placement trees. A Builder holds only options and can be
// shared between goroutines.
type Builder struct {
	opts Options
}

// NewBuilder returns a builder with opts, defaults applied.
func NewBuilder(opts Options) *Builder {
	opts.SetDefaults()
	return &Builder{opts: opts}
}

// Options returns the effective options.
func (b *Builder) Options() Options { return b.opts }

// Build lays out the tree rooted at root with default options.
func Build(root *tree.Node, parent *tree.ParentRef) (Layout, error) {
	return NewBuilder(Options{}).Build(root, parent)
}

// Build lays out the tree rooted at root. When parent is non-nil it is placed
// one rank above root and linked to it.
func (b *Builder) Build(root *tree.Node, parent *tree.ParentRef) (Layout, error) {
	if err := b.opts.Validate(); err != nil {
		return Layout{}, err
	}
	if root == nil {
		return Layout{}, errors.New(errors.ErrCodeInvalidTree, "tree has no root")
	}

	s := &session{opts: b.opts, members: make(map[string]*tree.Node)}
	g, err := s.register(root, parent)
	if err != nil {
		return Layout{}, err
	}
	return s.place(g)
}

// place ranks and positions the registered graph.
func (s *session) place(g *dag.DAG) (Layout, error) {
	transform.AssignLayers(g)
	ranks := transform.RelativeRows(g, s.rootID)
	if ranks == nil {
		return Layout{}, errors.New(errors.ErrCodeInvalidTree, "root %q could not be registered", s.rootID)
	}

	top := s.rootID
	if s.parent != nil {
		top = s.parent.ID
	}
	centers := placeTree(g, top, s.opts.NodeWidth+s.opts.NodeSep)

	return s.assemble(g, ranks, centers)
}

// session carries the state of a single Build call.
type session struct {
	opts    Options
	members map[string]*tree.Node
	rootID  string
	parent  *tree.ParentRef
	skipped []string
	seen    map[string]bool

	parentDropped bool
}

// register adds every resolvable member to a fresh DAG, in pre-order.
func (s *session) register(root *tree.Node, parent *tree.ParentRef) (*dag.DAG, error) {
	logger := s.opts.logger()
	g := dag.New(nil)

	if parent != nil {
		switch {
		case parent.ID == "":
			if err := s.dropParent(parent, "parent reference has no id"); err != nil {
				return nil, err
			}
		case inTree(root, parent.ID):
			if err := s.dropParent(parent, "parent reference is also a tree member"); err != nil {
				return nil, err
			}
		default:
			if err := g.AddNode(dag.Node{ID: parent.ID, Kind: dag.NodeKindAuxiliary}); err != nil {
				return nil, err
			}
			s.parent = parent
		}
	}

	s.rootID = root.ID
	var walkErr error
	tree.Walk(root, func(n, p *tree.Node, depth int) bool {
		if walkErr != nil {
			return false
		}
		if err := g.AddNode(dag.Node{ID: n.ID, Row: depth}); err != nil {
			reason := "duplicate member id"
			if stderrors.Is(err, dag.ErrInvalidNodeID) {
				reason = "member has no id"
			}
			if n == root {
				walkErr = errors.New(errors.ErrCodeInvalidTree, "root %q: %s", n.ID, reason)
				return false
			}
			if err := s.skipSubtree(n, reason); err != nil {
				walkErr = err
			}
			return false
		}
		s.members[n.ID] = n
		if p != nil {
			if err := g.AddEdge(dag.Edge{From: p.ID, To: n.ID}); err != nil {
				walkErr = errors.Wrap(errors.ErrCodeInternal, err, "link %s to %s", p.ID, n.ID)
				return false
			}
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if s.parent != nil {
		if err := g.AddEdge(dag.Edge{From: s.parent.ID, To: root.ID}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "link parent %s", s.parent.ID)
		}
	}

	logger.Debug("registered tree", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "skipped", len(s.skipped))
	return g, nil
}

// skip records a dropped member, or fails in strict mode.
func (s *session) skip(id, reason string) error {
	if s.opts.Strict {
		return errors.New(errors.ErrCodeInvalidTree, "%s: %q", reason, id)
	}
	s.opts.logger().Warn("skipping member", "id", id, "reason", reason)
	s.record(id)
	return nil
}

// skipSubtree drops n together with everything placed beneath it. Every
// non-empty id in the subtree is recorded.
func (s *session) skipSubtree(n *tree.Node, reason string) error {
	if s.opts.Strict {
		return errors.New(errors.ErrCodeInvalidTree, "%s: %q", reason, n.ID)
	}
	var ids []string
	tree.Walk(n, func(m, _ *tree.Node, _ int) bool {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
		return true
	})
	s.opts.logger().Warn("skipping member", "id", n.ID, "reason", reason, "subtree", len(ids))
	for _, id := range ids {
		s.record(id)
	}
	return nil
}

func (s *session) record(id string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if id == "" || s.seen[id] {
		return
	}
	s.seen[id] = true
	s.skipped = append(s.skipped, id)
}

// dropParent lays the tree out without its parent reference, or fails in
// strict mode. Tree members are untouched, so nothing is recorded as skipped.
func (s *session) dropParent(parent *tree.ParentRef, reason string) error {
	if s.opts.Strict {
		return errors.New(errors.ErrCodeInvalidTree, "%s: %q", reason, parent.ID)
	}
	s.opts.logger().Warn("dropping parent reference", "id", parent.ID, "reason", reason)
	s.parentDropped = true
	return nil
}

// assemble maps graph nodes back to members and converts centres into
// top-left positions.
func (s *session) assemble(g *dag.DAG, ranks map[string]int, centers map[string]float64) (Layout, error) {
	o := s.opts
	minRank, maxRank := 0, 0
	minX := 0.0
	first := true
	for _, n := range g.Nodes() {
		r := ranks[n.ID]
		minRank = min(minRank, r)
		maxRank = max(maxRank, r)
		if x := centers[n.ID] - o.NodeWidth/2; first || x < minX {
			minX, first = x, false
		}
	}

	downline := downlineCounts(g)
	out := Layout{Ranks: maxRank - minRank + 1}
	emitted := make(map[string]bool, g.NodeCount())

	for _, n := range g.Nodes() {
		data, ok := s.nodeData(n, g, downline)
		// Only reachable when g holds nodes that register did not add.
		if !ok {
			if err := s.skip(n.ID, "unresolvable member"); err != nil {
				return Layout{}, err
			}
			continue
		}
		rank := ranks[n.ID]
		out.Nodes = append(out.Nodes, Node{
			ID: n.ID,
			Position: Position{
				X: centers[n.ID] - o.NodeWidth/2 - minX + o.Margin,
				Y: float64(rank-minRank)*(o.NodeHeight+o.RankSep) + o.Margin,
			},
			Width:  o.NodeWidth,
			Height: o.NodeHeight,
			Rank:   rank,
			Data:   data,
		})
		emitted[n.ID] = true
	}

	for _, e := range g.Edges() {
		if !emitted[e.From] || !emitted[e.To] {
			continue
		}
		out.Edges = append(out.Edges, Edge{ID: EdgeID(e.From, e.To), Source: e.From, Target: e.To})
	}

	for _, n := range out.Nodes {
		out.Width = max(out.Width, n.Right()+o.Margin)
		out.Height = max(out.Height, n.Bottom()+o.Margin)
	}
	out.Crossings = dag.CountCrossings(g, dag.RowOrders(g))
	out.Skipped = s.skipped
	out.ParentDropped = s.parentDropped
	return out, nil
}

func (s *session) nodeData(n *dag.Node, g *dag.DAG, downline map[string]int) (NodeData, bool) {
	if n.IsAuxiliary() {
		if s.parent == nil || s.parent.ID != n.ID {
			return NodeData{}, false
		}
		kind := KindParent
		if s.parent.IsCompanyRoot() {
			kind = KindCompanyRoot
		}
		return NodeData{
			Label:         s.parent.Label(),
			MemberID:      s.parent.ID,
			Kind:          kind,
			DirectCount:   g.OutDegree(n.ID),
			DownlineCount: downline[n.ID],
		}, true
	}

	m, ok := s.members[n.ID]
	if !ok {
		return NodeData{}, false
	}
	return NodeData{
		Label:             m.Label(),
		MemberID:          m.ID,
		PackageValue:      m.PackageValue,
		PackageLabel:      FormatUSD(m.PackageValue),
		IsSplitSponsor:    m.IsSplitSponsor,
		OriginalSponsorID: m.OriginalSponsorID,
		Kind:              KindMember,
		IsRoot:            m.ID == s.rootID,
		DirectCount:       g.OutDegree(n.ID),
		DownlineCount:     downline[n.ID],
	}, true
}

// downlineCounts returns the number of descendants of every node.
func downlineCounts(g *dag.DAG) map[string]int {
	counts := make(map[string]int, g.NodeCount())
	nodes := g.Nodes()
	// Pre-order insertion means children always follow their parent.
	for i := len(nodes) - 1; i >= 0; i-- {
		id := nodes[i].ID
		for _, c := range g.Children(id) {
			counts[id] += counts[c] + 1
		}
	}
	return counts
}

func inTree(root *tree.Node, id string) bool {
	_, ok := tree.Find(root, id)
	return ok
}

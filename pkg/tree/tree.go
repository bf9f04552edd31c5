package tree

import (
	"fmt"

	"github.com/sagenex/teamtree/pkg/errors"
)

// CompanyRootID is the sentinel parent id the backend uses when the viewing
// user sits directly under the company account.
const CompanyRootID = "COMPANY-ROOT"

// Node is one member of the placement tree.
type Node struct {
	ID                string  `json:"userId" bson:"userId"`
	DisplayName       string  `json:"fullName" bson:"fullName"`
	PackageValue      float64 `json:"packageUSD" bson:"packageUSD"`
	IsSplitSponsor    bool    `json:"isSplitSponsor" bson:"isSplitSponsor"`
	OriginalSponsorID string  `json:"originalSponsorId,omitempty" bson:"originalSponsorId,omitempty"`
	Children          []Node  `json:"children" bson:"children"`
}

// Label returns the display name, falling back to the id.
func (n *Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.ID
}

// IsLeaf reports whether the node has no placed children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// ParentRef is the synthetic ancestor of the tree root: the viewer's own
// placement parent or the company account.
type ParentRef struct {
	ID          string `json:"userId" bson:"userId"`
	DisplayName string `json:"fullName" bson:"fullName"`
}

// Label returns the display name, falling back to the id.
func (p *ParentRef) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}

// IsCompanyRoot reports whether the parent is the organisational root rather
// than a real member.
func (p *ParentRef) IsCompanyRoot() bool {
	return p != nil && p.ID == CompanyRootID
}

// Response is the payload of GET /api/v1/user/team/tree.
type Response struct {
	Tree   *Node      `json:"tree" bson:"tree"`
	Parent *ParentRef `json:"parent,omitempty" bson:"parent,omitempty"`
}

// Validate checks the response against the invariants the layout relies on.
// A missing parent is fine; a missing tree is not.
func (r Response) Validate() error {
	if r.Tree == nil {
		return errors.New(errors.ErrCodeInvalidTree, "response has no tree")
	}
	if err := ValidateTree(r.Tree); err != nil {
		return err
	}
	if r.Parent != nil {
		if r.Parent.ID == "" {
			return errors.New(errors.ErrCodeInvalidTree, "parent reference has an empty id")
		}
		if _, ok := Find(r.Tree, r.Parent.ID); ok {
			return errors.New(errors.ErrCodeInvalidTree, "parent %q also appears inside the tree", r.Parent.ID)
		}
	}
	return nil
}

// ValidateTree reports the first invariant violation in the tree rooted at
// root: an empty id, a negative package value or a repeated id.
func ValidateTree(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeInvalidTree, "tree is empty")
	}
	seen := make(map[string]struct{})
	var err error
	Walk(root, func(n, _ *Node, depth int) bool {
		if err != nil {
			return false
		}
		switch {
		case n.ID == "":
			err = errors.New(errors.ErrCodeInvalidTree, "member at depth %d has an empty id", depth)
		case n.PackageValue < 0:
			err = errors.New(errors.ErrCodeInvalidTree, "member %q has negative package value %v", n.ID, n.PackageValue)
		default:
			if _, dup := seen[n.ID]; dup {
				err = errors.New(errors.ErrCodeInvalidTree, "duplicate member id %q", n.ID)
			}
			seen[n.ID] = struct{}{}
		}
		return err == nil
	})
	return err
}

// VisitFunc is called for every node reached by [Walk]. parent is nil for the
// root. Returning false skips the node's children.
type VisitFunc func(n, parent *Node, depth int) bool

// Walk visits the tree depth-first in pre-order. Children are visited in
// slice order.
func Walk(root *Node, fn VisitFunc) {
	if root == nil {
		return
	}
	walk(root, nil, 0, fn)
}

func walk(n, parent *Node, depth int, fn VisitFunc) {
	if !fn(n, parent, depth) {
		return
	}
	for i := range n.Children {
		walk(&n.Children[i], n, depth+1, fn)
	}
}

// Index maps every id in the tree to its node. When ids repeat, the first
// occurrence in pre-order wins.
func Index(root *Node) map[string]*Node {
	idx := make(map[string]*Node)
	Walk(root, func(n, _ *Node, _ int) bool {
		if _, ok := idx[n.ID]; !ok {
			idx[n.ID] = n
		}
		return true
	})
	return idx
}

// Find returns the first node with the given id.
func Find(root *Node, id string) (*Node, bool) {
	var found *Node
	Walk(root, func(n, _ *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// PathTo returns the ids from the root down to id, inclusive.
func PathTo(root *Node, id string) ([]string, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		return []string{root.ID}, true
	}
	for i := range root.Children {
		if path, ok := PathTo(&root.Children[i], id); ok {
			return append([]string{root.ID}, path...), true
		}
	}
	return nil, false
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node, *Node, int) bool { n++; return true })
	return n
}

// Depth returns the depth of the deepest node; a lone root has depth 0 and
// a nil tree -1.
func Depth(root *Node) int {
	maxDepth := -1
	Walk(root, func(_, _ *Node, d int) bool {
		maxDepth = max(maxDepth, d)
		return true
	})
	return maxDepth
}

// String implements fmt.Stringer for log output.
func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.ID, n.Label())
}

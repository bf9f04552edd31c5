package snapshot

import (
	"github.com/sagenex/teamtree/pkg/tree"
)

// Delta describes how a team changed between two snapshots.
type Delta struct {
	From string `json:"from"`
	To   string `json:"to"`
	// Joined lists members present only in the newer snapshot, in pre-order.
	Joined []string `json:"joined"`
	// Removed lists members present only in the older snapshot, in pre-order.
	Removed []string `json:"removed"`
	// Moved lists members whose placement parent changed.
	Moved []Move `json:"moved,omitempty"`

	MembersBefore int     `json:"members_before"`
	MembersAfter  int     `json:"members_after"`
	PackageDelta  float64 `json:"package_delta_usd"`
}

// Move is a member placed under a different parent.
type Move struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool {
	return len(d.Joined) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0 && d.PackageDelta == 0
}

// Diff compares an older snapshot a with a newer snapshot b.
func Diff(a, b *Snapshot) Delta {
	d := Delta{
		From:          a.ID,
		To:            b.ID,
		Joined:        []string{},
		Removed:       []string{},
		MembersBefore: a.Stats.Members,
		MembersAfter:  b.Stats.Members,
		PackageDelta:  b.Stats.TotalPackage - a.Stats.TotalPackage,
	}

	before := parents(a.Tree)
	after := parents(b.Tree)

	tree.Walk(b.Tree, func(n, _ *tree.Node, _ int) bool {
		prev, ok := before[n.ID]
		switch {
		case !ok:
			d.Joined = append(d.Joined, n.ID)
		case prev != after[n.ID] && n != b.Tree:
			d.Moved = append(d.Moved, Move{ID: n.ID, From: prev, To: after[n.ID]})
		}
		return true
	})
	tree.Walk(a.Tree, func(n, _ *tree.Node, _ int) bool {
		if _, ok := after[n.ID]; !ok {
			d.Removed = append(d.Removed, n.ID)
		}
		return true
	})
	return d
}

// parents maps every member id to its placement parent's id. The root maps
// to the empty string.
func parents(root *tree.Node) map[string]string {
	out := make(map[string]string)
	tree.Walk(root, func(n, parent *tree.Node, _ int) bool {
		if _, dup := out[n.ID]; dup {
			return false
		}
		if parent != nil {
			out[n.ID] = parent.ID
		} else {
			out[n.ID] = ""
		}
		return true
	})
	return out
}

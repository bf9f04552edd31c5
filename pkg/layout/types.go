package layout

import (
	"fmt"
	"sort"
)

// Kind classifies a layout node for rendering.
type Kind string

const (
	KindMember      Kind = "member"
	KindParent      Kind = "parent"
	KindCompanyRoot Kind = "company-root"
)

// Position is a point in layout coordinates; Y grows downward.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the display metadata of a layout node.
type NodeData struct {
	Label             string  `json:"label" bson:"label"`
	MemberID          string  `json:"member_id" bson:"member_id"`
	PackageValue      float64 `json:"package_usd" bson:"package_usd"`
	PackageLabel      string  `json:"package_label,omitempty" bson:"package_label,omitempty"`
	IsSplitSponsor    bool    `json:"is_split_sponsor,omitempty" bson:"is_split_sponsor,omitempty"`
	OriginalSponsorID string  `json:"original_sponsor_id,omitempty" bson:"original_sponsor_id,omitempty"`
	Kind              Kind    `json:"kind" bson:"kind"`
	IsRoot            bool    `json:"is_root,omitempty" bson:"is_root,omitempty"`
	DirectCount       int     `json:"direct_count" bson:"direct_count"`
	DownlineCount     int     `json:"downline_count" bson:"downline_count"`
}

// Node is a positioned member. Position is the top-left corner.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Position Position `json:"position" bson:"position"`
	Width    float64  `json:"width" bson:"width"`
	Height   float64  `json:"height" bson:"height"`
	// Rank is the depth relative to the tree root; the parent reference is -1.
	Rank int      `json:"rank" bson:"rank"`
	Data NodeData `json:"data" bson:"data"`
}

// Center returns the midpoint of the node's footprint.
func (n Node) Center() Position {
	return Position{X: n.Position.X + n.Width/2, Y: n.Position.Y + n.Height/2}
}

// Left returns the x coordinate of the left edge.
func (n Node) Left() float64 { return n.Position.X }

// Right returns the x coordinate of the right edge.
func (n Node) Right() float64 { return n.Position.X + n.Width }

// Bottom returns the y coordinate of the bottom edge.
func (n Node) Bottom() float64 { return n.Position.Y + n.Height }

// Edge connects a placement parent to a child.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// EdgeID returns the id used for the edge from source to target.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e-%s-%s", source, target)
}

// Layout is the result of [Builder.Build].
type Layout struct {
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	// Ranks is the number of distinct ranks, parent included.
	Ranks int `json:"ranks" bson:"ranks"`
	// Crossings counts edge crossings between consecutive ranks.
	Crossings int `json:"crossings" bson:"crossings"`
	// Skipped lists, in pre-order and without repeats, the ids of dropped
	// tree entries: a duplicate id whose later occurrence was dropped, every
	// member beneath a dropped entry, and members that could not be resolved.
	Skipped []string `json:"skipped,omitempty" bson:"skipped,omitempty"`
	// ParentDropped reports that the parent reference was left out because
	// it had no id or named a tree member.
	ParentDropped bool `json:"parentDropped,omitempty" bson:"parentDropped,omitempty"`
}

// Node returns the layout node with the given id.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIndex maps node ids to their index in Nodes.
func (l *Layout) NodeIndex() map[string]int {
	idx := make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// ByRank groups node ids by rank, in left-to-right order.
func (l *Layout) ByRank() map[int][]string {
	idx := l.NodeIndex()
	rows := make(map[int][]string)
	for _, n := range l.Nodes {
		rows[n.Rank] = append(rows[n.Rank], n.ID)
	}
	for _, ids := range rows {
		sort.SliceStable(ids, func(i, j int) bool {
			return l.Nodes[idx[ids[i]]].Position.X < l.Nodes[idx[ids[j]]].Position.X
		})
	}
	return rows
}

package tree

// Stats summarises a tree for display and snapshots.
type Stats struct {
	Members       int     `json:"members" bson:"members"`
	MaxDepth      int     `json:"max_depth" bson:"max_depth"`
	TotalPackage  float64 `json:"total_package_usd" bson:"total_package_usd"`
	SplitSponsors int     `json:"split_sponsors" bson:"split_sponsors"`
	Leaves        int     `json:"leaves" bson:"leaves"`
	// DirectRecruits counts the root's immediate placements.
	DirectRecruits int `json:"direct_recruits" bson:"direct_recruits"`
}

// ComputeStats walks the tree once and aggregates its [Stats].
func ComputeStats(root *Node) Stats {
	s := Stats{MaxDepth: -1}
	if root != nil {
		s.DirectRecruits = len(root.Children)
	}
	Walk(root, func(n, _ *Node, depth int) bool {
		s.Members++
		s.TotalPackage += n.PackageValue
		s.MaxDepth = max(s.MaxDepth, depth)
		if n.IsSplitSponsor {
			s.SplitSponsors++
		}
		if n.IsLeaf() {
			s.Leaves++
		}
		return true
	})
	return s
}

// LevelCounts returns the number of members at each depth below the root,
// starting with the root itself at index 0.
func LevelCounts(root *Node) []int {
	var counts []int
	Walk(root, func(_, _ *Node, depth int) bool {
		for len(counts) <= depth {
			counts = append(counts, 0)
		}
		counts[depth]++
		return true
	})
	return counts
}

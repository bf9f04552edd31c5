package transform

import "github.com/sagenex/teamtree/pkg/dag"

// AssignLayers assigns nodes to rows by longest path from the sources.
//
// Sources (no incoming edges) land on row 0 and every other node sits one row
// below its deepest parent, so parents are always strictly above children.
// For a placement tree with an optional parent reference this is simply the
// depth below the topmost node.
//
// The traversal is Kahn's algorithm in O(V + E). Nodes on a cycle never reach
// zero in-degree and keep row 0; callers are expected to pass acyclic graphs.
// Existing row assignments are overwritten.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}

// RelativeRows returns each node's row minus the row of anchor, so anchor is
// rank 0, its ancestors are negative and its descendants positive. It returns
// nil when anchor is not in the graph.
func RelativeRows(g *dag.DAG, anchor string) map[string]int {
	a, ok := g.Node(anchor)
	if !ok {
		return nil
	}
	ranks := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		ranks[n.ID] = n.Row - a.Row
	}
	return ranks
}

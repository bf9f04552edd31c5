package dag

import (
	"maps"
	"slices"
)

// CountCrossings returns the total number of edge crossings for the given row
// orderings, summed over each pair of consecutive rows. Rows without entries
// in orders are treated as empty.
//
// A tree laid out in pre-order has no crossings; the layout uses this as a
// sanity statistic.
func CountCrossings(g *DAG, orders map[int][]string) int {
	rows := slices.Sorted(maps.Keys(orders))
	crossings := 0
	for i := 0; i < len(rows)-1; i++ {
		r := rows[i]
		crossings += CountLayerCrossings(g, orders[r], orders[r+1])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent rows using a
// Fenwick tree in O(E log V).
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, nodeID := range upper {
		for _, child := range g.Children(nodeID) {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// RowOrders returns the current left-to-right order of every row as node IDs.
func RowOrders(g *DAG) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, r := range g.RowIDs() {
		orders[r] = NodeIDs(g.NodesInRow(r))
	}
	return orders
}

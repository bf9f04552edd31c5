package layout

import "github.com/sagenex/teamtree/pkg/dag"

// contour holds, per relative depth, the centre x of the leftmost and
// rightmost node of a subtree. Coordinates are relative to the subtree root.
type contour struct {
	left, right []float64
}

func (c *contour) depth() int { return len(c.left) }

// placeTree assigns a horizontal centre to every node reachable from top.
//
// Subtrees are laid out bottom-up. Each child subtree is shifted right until
// its contour clears the accumulated contour of its left siblings by at least
// unit at every shared depth, and the parent is centred between its first and
// last child. A second pass turns the relative offsets into absolute centres,
// with top at x=0.
func placeTree(g *dag.DAG, top string, unit float64) map[string]float64 {
	offsets := make(map[string]float64, g.NodeCount())
	visited := make(map[string]bool, g.NodeCount())

	var place func(id string) contour
	place = func(id string) contour {
		visited[id] = true
		var kids []string
		for _, c := range g.Children(id) {
			if !visited[c] {
				kids = append(kids, c)
			}
		}
		if len(kids) == 0 {
			return contour{left: []float64{0}, right: []float64{0}}
		}

		var acc contour
		shifts := make([]float64, len(kids))
		for i, kid := range kids {
			c := place(kid)
			if i == 0 {
				acc = c
				continue
			}
			shift := 0.0
			shared := min(acc.depth(), c.depth())
			for d := 0; d < shared; d++ {
				shift = max(shift, acc.right[d]+unit-c.left[d])
			}
			shifts[i] = shift
			for d := 0; d < c.depth(); d++ {
				if d < acc.depth() {
					acc.right[d] = shift + c.right[d]
					continue
				}
				acc.left = append(acc.left, shift+c.left[d])
				acc.right = append(acc.right, shift+c.right[d])
			}
		}

		mid := (shifts[0] + shifts[len(shifts)-1]) / 2
		for i, kid := range kids {
			offsets[kid] = shifts[i] - mid
		}

		out := contour{
			left:  make([]float64, 1, acc.depth()+1),
			right: make([]float64, 1, acc.depth()+1),
		}
		for d := 0; d < acc.depth(); d++ {
			out.left = append(out.left, acc.left[d]-mid)
			out.right = append(out.right, acc.right[d]-mid)
		}
		return out
	}
	place(top)

	centers := make(map[string]float64, len(visited))
	centers[top] = 0
	queue := []string{top}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range g.Children(id) {
			if _, done := centers[c]; done {
				continue
			}
			centers[c] = centers[id] + offsets[c]
			queue = append(queue, c)
		}
	}
	return centers
}

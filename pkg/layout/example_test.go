package layout_test

import (
	"fmt"

	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

func ExampleBuild() {
	root := &tree.Node{ID: "U1", Children: []tree.Node{
		{ID: "U2"},
		{ID: "U3", Children: []tree.Node{{ID: "U4"}}},
	}}

	l, _ := layout.Build(root, &tree.ParentRef{ID: "SPONSOR1"})
	for _, n := range l.Nodes {
		fmt.Printf("%-8s rank=%2d x=%5.1f y=%5.1f\n", n.ID, n.Rank, n.Position.X, n.Position.Y)
	}
	fmt.Println("edges:", len(l.Edges))
	// Output:
	// SPONSOR1 rank=-1 x=132.5 y= 20.0
	// U1       rank= 0 x=132.5 y=190.0
	// U2       rank= 1 x= 20.0 y=360.0
	// U3       rank= 1 x=245.0 y=360.0
	// U4       rank= 2 x=245.0 y=530.0
	// edges: 4
}

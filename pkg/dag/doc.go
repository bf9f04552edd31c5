// Package dag provides a directed acyclic graph organized into rows (layers),
// the intermediate structure between a placement tree and its layout.
//
// # Overview
//
// The layout builder registers every member of the tree as a [Node] and every
// placement as an [Edge], assigns rows with the transform subpackage and then
// positions each row. Edges may only connect consecutive rows
// (From.Row+1 == To.Row), which [DAG.Validate] checks along with acyclicity.
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "U1", Row: 0})
//	g.AddNode(dag.Node{ID: "U2", Row: 1})
//	g.AddEdge(dag.Edge{From: "U1", To: "U2"})
//
// # Ordering
//
// Nodes, rows and adjacency lists keep insertion order. Building the graph in
// tree pre-order therefore yields left-to-right row orders with no edge
// crossings, which [CountCrossings] can confirm.
//
// # Node Kinds
//
//   - [NodeKindRegular]: members from the tree data
//   - [NodeKindAuxiliary]: synthetic nodes such as the viewer's parent
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
package dag

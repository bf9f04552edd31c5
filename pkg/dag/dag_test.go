package dag

import (
	"errors"
	"testing"
)

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice = %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("AddNode should initialise Meta")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown source) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown target) = %v", err)
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"m", "c", "x", "a", "q"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id, Row: 1})
	}
	got := NodeIDs(g.Nodes())
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("Nodes() = %v, want %v", got, ids)
		}
	}

	g.SetRows(map[string]int{"c": 2, "a": 2})
	row2 := NodeIDs(g.NodesInRow(2))
	if len(row2) != 2 || row2[0] != "c" || row2[1] != "a" {
		t.Errorf("NodesInRow(2) = %v, want [c a]", row2)
	}
	if got := g.RowIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("RowIDs() = %v, want [1 2]", got)
	}
	if g.MaxRow() != 2 {
		t.Errorf("MaxRow() = %d, want 2", g.MaxRow())
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "p", Row: 0})
	_ = g.AddNode(Node{ID: "r", Row: 1})
	_ = g.AddNode(Node{ID: "c", Row: 2})
	_ = g.AddEdge(Edge{From: "p", To: "r"})
	_ = g.AddEdge(Edge{From: "r", To: "c"})

	if s := NodeIDs(g.Sources()); len(s) != 1 || s[0] != "p" {
		t.Errorf("Sources() = %v, want [p]", s)
	}
	if s := NodeIDs(g.Sinks()); len(s) != 1 || s[0] != "c" {
		t.Errorf("Sinks() = %v, want [c]", s)
	}
	if g.InDegree("r") != 1 || g.OutDegree("r") != 1 {
		t.Errorf("degrees of r = %d/%d, want 1/1", g.InDegree("r"), g.OutDegree("r"))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *DAG
		want  error
	}{
		{
			name: "valid",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				return g
			},
		},
		{
			name: "skips a row",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 2})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				return g
			},
			want: ErrNonConsecutiveRows,
		},
		{
			name: "cycle",
			build: func() *DAG {
				g := New(nil)
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				_ = g.AddEdge(Edge{From: "b", To: "a"})
				return g
			},
			want: ErrNonConsecutiveRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build().Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "a"})
	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want ErrGraphHasCycle", err)
	}
}

func TestCountCrossingsTree(t *testing.T) {
	g := New(nil)
	for _, n := range []Node{{ID: "r", Row: 0}, {ID: "a", Row: 1}, {ID: "b", Row: 1}, {ID: "a1", Row: 2}, {ID: "b1", Row: 2}} {
		_ = g.AddNode(n)
	}
	_ = g.AddEdge(Edge{From: "r", To: "a"})
	_ = g.AddEdge(Edge{From: "r", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "a1"})
	_ = g.AddEdge(Edge{From: "b", To: "b1"})

	if got := CountCrossings(g, RowOrders(g)); got != 0 {
		t.Errorf("CountCrossings(pre-order) = %d, want 0", got)
	}
	swapped := RowOrders(g)
	swapped[2] = []string{"b1", "a1"}
	if got := CountCrossings(g, swapped); got != 1 {
		t.Errorf("CountCrossings(swapped) = %d, want 1", got)
	}
}

package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/pipeline"
	"github.com/sagenex/teamtree/pkg/tree"
)

func browseLayout(t *testing.T) graph.Layout {
	t.Helper()
	resp, err := tree.Unmarshal([]byte(treeJSON))
	if err != nil {
		t.Fatal(err)
	}
	l, err := pipeline.ComputeLayout(resp, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func press(m TreeModel, keys ...string) TreeModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(TreeModel)
	}
	return m
}

func TestTreeModelInitialRows(t *testing.T) {
	m := NewTreeModel(browseLayout(t))

	// Parent and root are expanded; U3 is collapsed.
	want := []string{"SPONSOR1", "U1", "U2", "U3"}
	if diff := cmp.Diff(want, m.Visible()); diff != "" {
		t.Errorf("visible rows mismatch (-want +got):\n%s", diff)
	}
	if n, ok := m.Selected(); !ok || n.ID != "SPONSOR1" {
		t.Errorf("selected = %v, %v", n.ID, ok)
	}
}

func TestTreeModelNavigation(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		selected string
		visible  []string
	}{
		{"down twice", []string{"down", "down"}, "U2", []string{"SPONSOR1", "U1", "U2", "U3"}},
		{"up stops at top", []string{"up", "up"}, "SPONSOR1", []string{"SPONSOR1", "U1", "U2", "U3"}},
		{"down stops at bottom", []string{"j", "j", "j", "j", "j"}, "U3", []string{"SPONSOR1", "U1", "U2", "U3"}},
		{"expand", []string{"j", "j", "j", "right"}, "U3", []string{"SPONSOR1", "U1", "U2", "U3", "U4"}},
		{"toggle twice", []string{"j", "j", "j", "enter", "enter"}, "U3", []string{"SPONSOR1", "U1", "U2", "U3"}},
		{"collapse root", []string{"j", "left"}, "U1", []string{"SPONSOR1", "U1"}},
		{"left on leaf moves to parent", []string{"j", "j", "h"}, "U1", []string{"SPONSOR1", "U1", "U2", "U3"}},
		{"expand all", []string{"e"}, "SPONSOR1", []string{"SPONSOR1", "U1", "U2", "U3", "U4"}},
		{"collapse all", []string{"j", "j", "c"}, "SPONSOR1", []string{"SPONSOR1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewTreeModel(browseLayout(t)), tt.keys...)
			if n, _ := m.Selected(); n.ID != tt.selected {
				t.Errorf("selected = %q, want %q", n.ID, tt.selected)
			}
			if diff := cmp.Diff(tt.visible, m.Visible()); diff != "" {
				t.Errorf("visible rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTreeModelQuit(t *testing.T) {
	m := NewTreeModel(browseLayout(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestTreeModelScrolling(t *testing.T) {
	m := NewTreeModel(browseLayout(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m = press(next.(TreeModel), "e", "j", "j", "j", "j", "j", "j")
	if m.Height != 5 {
		t.Fatalf("height = %d, want the minimum of 5", m.Height)
	}
	if m.Cursor != 4 || m.Offset != 0 {
		t.Errorf("cursor/offset = %d/%d, want 4/0", m.Cursor, m.Offset)
	}
}

func TestTreeModelView(t *testing.T) {
	m := press(NewTreeModel(browseLayout(t)), "j", "j", "j")
	view := m.View()

	for _, want := range []string{"Placement Tree", "Sam", "Ada", "$1,000", "[4/4]", "Downline", "from U9"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Di ") {
		t.Errorf("collapsed child should not be listed:\n%s", view)
	}
}

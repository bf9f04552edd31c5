package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

func sampleLayout(t *testing.T) Layout {
	t.Helper()
	root := &tree.Node{ID: "U1", DisplayName: "Ada", PackageValue: 1000, Children: []tree.Node{
		{ID: "U2", PackageValue: 250},
		{ID: "U3", Children: []tree.Node{{ID: "U4"}}},
	}}
	b := layout.NewBuilder(layout.Options{})
	l, err := b.Build(root, &tree.ParentRef{ID: tree.CompanyRootID})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return FromLayout(l, b.Options(), tree.ComputeStats(root))
}

func TestFromLayout(t *testing.T) {
	l := sampleLayout(t)
	if l.Version != Version {
		t.Errorf("Version = %d, want %d", l.Version, Version)
	}
	if l.Options.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("NodeWidth = %v", l.Options.NodeWidth)
	}
	if l.Stats.Members != 4 || l.Stats.Ranks != 4 {
		t.Errorf("stats = %+v", l.Stats)
	}
	if len(l.Nodes) != 5 || len(l.Edges) != 4 {
		t.Errorf("got %d nodes, %d edges", len(l.Nodes), len(l.Edges))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	l := sampleLayout(t)
	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	for _, key := range []string{`"version": 1`, `"total_package_usd": 1250`, `"kind": "company-root"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output missing %s", key)
		}
	}

	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(l.ToLayout().Nodes, got.ToLayout().Nodes); diff != "" {
		t.Errorf("ToLayout nodes (-want +got):\n%s", diff)
	}
}

func TestBSONRoundTrip(t *testing.T) {
	l := sampleLayout(t)
	data, err := bson.Marshal(l)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var got Layout
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if got.Stats.Members != l.Stats.Members || len(got.Nodes) != len(l.Nodes) {
		t.Errorf("bson round trip lost data: %+v", got.Stats)
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	node := `{"id":"%s","position":{"x":0,"y":0},"width":200,"height":90}`
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid json", `{nope}`, "unmarshal layout"},
		{"future version", `{"version": 99}`, "newer than supported"},
		{"duplicate node", `{"nodes":[` + strings.ReplaceAll(node, "%s", "A") + `,` + strings.ReplaceAll(node, "%s", "A") + `]}`, "duplicate node"},
		{"zero size", `{"nodes":[{"id":"A"}]}`, "has size"},
		{"dangling edge", `{"nodes":[` + strings.ReplaceAll(node, "%s", "A") + `],"edges":[{"id":"e","source":"A","target":"B"}]}`, "unknown target"},
		{"missing source", `{"nodes":[` + strings.ReplaceAll(node, "%s", "A") + `],"edges":[{"id":"e","source":"Z","target":"A"}]}`, "unknown source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidLayout) {
				t.Errorf("code = %s, want INVALID_LAYOUT", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := sampleLayout(t)
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("file round trip (-want +got):\n%s", diff)
	}

	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLayout(sampleLayout(t), &buf); err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("output should end with a newline")
	}
}

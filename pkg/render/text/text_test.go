package text

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sagenex/teamtree/pkg/layout"
	"github.com/sagenex/teamtree/pkg/tree"
)

func build(t *testing.T, parent *tree.ParentRef) layout.Layout {
	t.Helper()
	root := &tree.Node{ID: "U1", DisplayName: "Ada", PackageValue: 1000, Children: []tree.Node{
		{ID: "U2", DisplayName: "Ben", PackageValue: 250},
		{ID: "U3", DisplayName: "Cy", PackageValue: 1500, IsSplitSponsor: true, OriginalSponsorID: "U9", Children: []tree.Node{
			{ID: "U4", PackageValue: 100},
		}},
	}}
	l, err := layout.Build(root, parent)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return l
}

func TestRenderPlain(t *testing.T) {
	got := Render(build(t, &tree.ParentRef{ID: tree.CompanyRootID, DisplayName: "Sagenex"}), Options{Plain: true})
	want := strings.Join([]string{
		"Sagenex (COMPANY-ROOT)",
		"└── Ada (U1) $1,000",
		"    ├── Ben (U2) $250",
		"    └── Cy (U3) $1,500 [split from U9]",
		"        └── U4 $100",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outline (-want +got):\n%s", diff)
	}
}

func TestRenderOptions(t *testing.T) {
	l := build(t, nil)

	got := Render(l, Options{Plain: true, HidePackages: true, MaxDepth: 1})
	want := strings.Join([]string{
		"Ada (U1)",
		"├── Ben (U2)",
		"└── Cy (U3) [split from U9]",
		"    └── … 1 more",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outline (-want +got):\n%s", diff)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(layout.Layout{}, Options{Plain: true}); got != "" {
		t.Errorf("empty layout rendered %q", got)
	}
}

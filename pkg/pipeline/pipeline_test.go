package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/graph"
	"github.com/sagenex/teamtree/pkg/tree"
)

const sampleJSON = `{
  "tree": {
    "userId": "U1", "fullName": "Ada", "packageUSD": 1000, "isSplitSponsor": false,
    "children": [
      {"userId": "U2", "fullName": "Ben", "packageUSD": 250, "isSplitSponsor": false, "children": []},
      {"userId": "U3", "fullName": "Cy", "packageUSD": 500, "isSplitSponsor": true, "originalSponsorId": "U9",
       "children": [{"userId": "U4", "fullName": "Di", "packageUSD": 100, "isSplitSponsor": false, "children": []}]}
    ]
  },
  "parent": {"userId": "SPONSOR1", "fullName": "Sponsor"}
}`

func sampleResponse(t *testing.T) tree.Response {
	t.Helper()
	resp, err := tree.Unmarshal([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return resp
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"txt", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateRenderer(t *testing.T) {
	tests := []struct {
		renderer string
		wantErr  bool
	}{
		{"cards", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateRenderer(tt.renderer)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRenderer(%q) error = %v, wantErr %v", tt.renderer, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"svg", []string{"svg"}},
		{"svg, PNG ,json", []string{"svg", "png", "json"}},
		{" , ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseFormats(tt.in)); diff != "" {
			t.Errorf("ParseFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Renderer != RendererCards {
		t.Errorf("Renderer = %q, want %q", opts.Renderer, RendererCards)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Layout.NodeWidth != 200 || opts.Layout.NodeHeight != 90 {
		t.Errorf("node size = %vx%v, want 200x90", opts.Layout.NodeWidth, opts.Layout.NodeHeight)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	bad := Options{Scale: -1}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("negative scale should fail")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Renderer: RendererCards, Scale: 3, HidePackages: true}
	if got := opts.ArtifactKeyOpts(FormatSVG); got.Scale != 0 || got.Packages {
		t.Errorf("svg key opts = %+v, want no scale and packages off", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPNG); got.Scale != 3 {
		t.Errorf("png key scale = %v, want 3", got.Scale)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG:  "image/svg+xml",
		FormatPNG:  "image/png",
		FormatJSON: "application/json",
		"bogus":    "application/octet-stream",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestComputeLayout(t *testing.T) {
	l, err := ComputeLayout(sampleResponse(t), Options{})
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if len(l.Nodes) != 5 || len(l.Edges) != 4 {
		t.Fatalf("got %d nodes, %d edges; want 5, 4", len(l.Nodes), len(l.Edges))
	}
	if l.Version != graph.Version {
		t.Errorf("Version = %d, want %d", l.Version, graph.Version)
	}
	if l.Stats.Members != 4 || l.Stats.SplitSponsors != 1 || l.Stats.TotalPackage != 1850 {
		t.Errorf("Stats = %+v", l.Stats)
	}
	if l.Nodes[0].ID != "SPONSOR1" || l.Nodes[0].Rank != -1 {
		t.Errorf("first node = %s rank %d, want SPONSOR1 rank -1", l.Nodes[0].ID, l.Nodes[0].Rank)
	}
	if l.Options.Logger != nil {
		t.Error("serialized options must not carry a logger")
	}
}

func TestComputeLayoutDuplicates(t *testing.T) {
	resp := tree.Response{Tree: &tree.Node{ID: "A", Children: []tree.Node{
		{ID: "B"},
		{ID: "C", Children: []tree.Node{{ID: "B"}}},
	}}}

	l, err := ComputeLayout(resp, Options{})
	if err != nil {
		t.Fatalf("lenient ComputeLayout: %v", err)
	}
	if diff := cmp.Diff([]string{"B"}, l.Stats.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}

	var strict Options
	strict.Layout.Strict = true
	if _, err := ComputeLayout(resp, strict); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("strict ComputeLayout error = %v, want INVALID_TREE", err)
	}
}

func TestComputeLayoutParentDropped(t *testing.T) {
	resp := tree.Response{
		Tree:   &tree.Node{ID: "A", Children: []tree.Node{{ID: "B", Children: []tree.Node{{ID: "C"}}}}},
		Parent: &tree.ParentRef{ID: "B"},
	}
	l, err := ComputeLayout(resp, Options{})
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if !l.Stats.ParentDropped || l.Stats.Skipped != nil {
		t.Errorf("ParentDropped = %v, Skipped = %v; want true, none", l.Stats.ParentDropped, l.Stats.Skipped)
	}
	if got := l.ToLayout(); !got.ParentDropped {
		t.Error("ToLayout lost ParentDropped")
	}
}

func TestComputeLayoutNoTree(t *testing.T) {
	if _, err := ComputeLayout(tree.Response{}, Options{}); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("error = %v, want INVALID_TREE", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Static(sampleResponse(t)), Options{
		Formats: []string{FormatJSON, FormatSVG, FormatDOT, FormatTXT},
		Title:   "My team",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Members != 4 || res.Stats.NodeCount != 5 || res.Stats.EdgeCount != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.LayoutHash) != 64 {
		t.Errorf("LayoutHash = %q, want 64 hex chars", res.LayoutHash)
	}

	decoded, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if len(decoded.Nodes) != 5 {
		t.Errorf("json artifact has %d nodes, want 5", len(decoded.Nodes))
	}

	svg := string(res.Artifacts[FormatSVG])
	for _, want := range []string{"<svg", `id="node-U4"`, "My team"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.Contains(dot, "digraph") || !strings.Contains(dot, `"U3" -> "U4"`) {
		t.Errorf("dot artifact unexpected:\n%s", dot)
	}
	if txt := string(res.Artifacts[FormatTXT]); !strings.Contains(txt, "U4") {
		t.Errorf("txt artifact missing U4:\n%s", txt)
	}
}

func TestRunnerArtifactCache(t *testing.T) {
	mem, err := cache.NewMemoryCache(64)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatTXT, FormatJSON}}

	first, err := r.Execute(ctx, Static(sampleResponse(t)), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.RenderHit || first.CacheInfo.Hits != 0 {
		t.Errorf("first run CacheInfo = %+v, want all misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, Static(sampleResponse(t)), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit || second.CacheInfo.Hits != 2 {
		t.Errorf("second run CacheInfo = %+v, want 2 hits", second.CacheInfo)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, Static(sampleResponse(t)), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.Hits != 0 {
		t.Errorf("refresh run Hits = %d, want 0", third.CacheInfo.Hits)
	}

	// A different title is a different artifact.
	opts.Refresh = false
	opts.Title = "other"
	fourth, err := r.Execute(ctx, Static(sampleResponse(t)), opts)
	if err != nil {
		t.Fatalf("retitled Execute: %v", err)
	}
	if fourth.CacheInfo.Hits != 1 {
		t.Errorf("retitled run Hits = %d, want 1 (txt only)", fourth.CacheInfo.Hits)
	}
}

func TestRunnerFetchErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	failing := FetcherFunc(func(context.Context) (tree.Response, error) {
		return tree.Response{}, errors.New(errors.ErrCodeUnauthorized, "token expired")
	})
	if _, err := r.Execute(ctx, failing, Options{}); !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("error = %v, want UNAUTHORIZED", err)
	}

	if _, err := r.Execute(ctx, Static(tree.Response{}), Options{}); !errors.Is(err, errors.ErrCodeInvalidResponse) {
		t.Errorf("error = %v, want INVALID_RESPONSE", err)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Static(sampleResponse(t)), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerWithBackend(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != backend.PathTeamTree {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	client, err := backend.NewClient(srv.URL, backend.WithToken("tok"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), client, Options{Formats: []string{FormatTXT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if res.Response.Parent == nil || res.Response.Parent.ID != "SPONSOR1" {
		t.Errorf("Parent = %+v, want SPONSOR1", res.Response.Parent)
	}
	if sourceOf(client) != srv.URL {
		t.Errorf("sourceOf = %q, want %q", sourceOf(client), srv.URL)
	}
}

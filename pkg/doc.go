// Package pkg provides the core libraries for teamtree, which lays out and
// renders Sagenex placement trees.
//
// # Overview
//
// A member's placement tree arrives from the Sagenex API as a nested
// structure plus an optional reference to the member's own parent. teamtree
// turns it into positioned nodes and edges that any renderer can draw.
// The pkg directory is organized into these areas:
//
//  1. [tree] - Wire types for the team tree response, decoding and traversal
//  2. [layout] - The tree layout builder (nodes, edges, coordinates)
//  3. [dag] - Ranked graph structure used for crossing counts and layering
//  4. [graph] - Serialization types for layouts (JSON and BSON)
//  5. [render] - SVG, Graphviz, text and raster outputs
//  6. [pipeline] - Orchestration (fetch → layout → render) with caching
//  7. [backend] - HTTP client for the Sagenex API and placement checks
//  8. [cache], [snapshot] - Artifact caching and tree history
//
// # Architecture
//
// The typical data flow through teamtree:
//
//	Sagenex API / tree.json
//	         ↓
//	    [tree] package (decode + validate)
//	         ↓
//	    [layout] package (rank, position, style)
//	         ↓
//	    [render] packages (svg, nodelink, text)
//	         ↓
//	    SVG/PDF/PNG/DOT/JSON/text output
//
// # Quick Start
//
// Lay out a saved tree and render it to SVG:
//
//	import (
//	    "github.com/sagenex/teamtree/pkg/layout"
//	    "github.com/sagenex/teamtree/pkg/render/svg"
//	    "github.com/sagenex/teamtree/pkg/tree"
//	)
//
//	resp, _ := tree.ReadFile("tree.json")
//	l, _ := layout.Build(resp.Tree, resp.Parent)
//	out := svg.Render(l, svg.WithTitle("My team"))
//
// Layouts are pure: the same response always yields the same nodes, edges
// and coordinates. Members that cannot be placed are skipped, logged and
// listed in the layout's Skipped field, unless the builder runs in strict
// mode.
//
// # Testing
//
// Tests that need Redis or MongoDB skip unless TEAMTREE_TEST_REDIS_ADDR or
// TEAMTREE_TEST_MONGO_URI is set:
//
//	go test ./pkg/...
//	TEAMTREE_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache/...
package pkg

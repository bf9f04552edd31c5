// Package graph provides the serialization format for placement tree layouts.
//
// This package defines the canonical wire format for teamtree's layout data,
// used for JSON files, API responses, snapshots and as the input of every
// renderer's cache key.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// layout and external formats:
//
//   - [Layout]: serialization type (this package)
//   - pkg/layout.Layout: result of the tree layout builder
//   - pkg/tree.Stats: tree summary carried along for display
//
// Use [FromLayout] and [Layout.ToLayout] to convert between them.
//
// # Layout Serialization
//
//	{
//	  "version": 1,
//	  "width": 465,
//	  "height": 470,
//	  "options": {"node_width": 200, ...},
//	  "nodes": [{"id": "U1", "position": {"x": 132.5, "y": 20}, ...}],
//	  "edges": [{"id": "e-U1-U2", "source": "U1", "target": "U2"}],
//	  "stats": {"members": 4, ...}
//	}
//
// Common operations:
//
//	l, _ := graph.ReadLayoutFile("layout.json")   // File → Layout
//	graph.WriteLayoutFile(l, "layout.json")       // Layout → File
//	data, _ := graph.MarshalLayout(l)             // Layout → []byte
//	parsed, _ := graph.UnmarshalLayout(data)      // []byte → Layout (validated)
//
// [UnmarshalLayout] rejects layouts whose nodes repeat an id or whose edges
// point at missing nodes, so renderers can trust what they are given.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph

// Package svg draws placement tree layouts as SVG member cards.
//
// Unlike the Graphviz renderer in pkg/render/nodelink, this renderer does not
// lay anything out: every card sits exactly where [layout.Builder] put it, so
// the picture matches the JSON layout served to the web client.
//
//	out := svg.Render(l,
//	    svg.WithTitle("Team of Ada"),
//	    svg.WithPackages(false),
//	)
//
// Cards show the member name, id and package value. Split sponsors carry a
// badge whose tooltip names the original sponsor. The parent reference is
// drawn dashed, and the company root is drawn inverted. Edges are elbow
// connectors from the bottom of a parent card to the top of each child.
package svg

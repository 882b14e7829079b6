// Package nodelink renders traceability graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] writes Graphviz DOT source in which every node carries its fill
// color and a pinned position taken from the computed layout, and every edge
// carries its relationship label. The DOT source is the portable output: any
// Graphviz installation reproduces the same picture with
//
//	neato -n2 -Tsvg graph.dot
//
// # In-process Rendering
//
// [RenderSVG] and [RenderPNG] run the neato engine through
// [github.com/goccy/go-graphviz], so no external binary is needed. Pinned
// positions make the engine honour the layout instead of computing its own.
//
//	dot := nodelink.ToDOT(g, coords, entry, nodelink.Options{Title: title})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PDF output goes through SVG and rsvg-convert; see the render package.
package nodelink

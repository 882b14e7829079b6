// Package render turns a laid-out traceability graph into an artifact.
//
// # Overview
//
// [Render] is the single entry point. It picks the color scheme for the
// graph's profile, then dispatches on [Format]:
//
//   - dot: Graphviz source with pinned positions (see [nodelink])
//   - svg, png: the DOT source drawn in-process by Graphviz
//   - pdf: the SVG converted with rsvg-convert
//   - raster: the layout painted directly onto a bitmap (see [raster])
//   - json: the positioned, colored graph (see [graph.Layout])
//
// Every failure, including a panic inside a drawing backend, is returned as
// a RENDER_FAILURE error with no partial output. Callers decide whether to
// degrade; the pipeline omits the artifact and records a warning.
//
//	coords := layout.Compute(g)
//	png, err := render.Render(ctx, g, coords, render.Options{Format: render.FormatPNG})
//	text := render.EncodeBase64(png)
//
// [nodelink]: github.com/matzehuels/reqtrace/pkg/render/nodelink
// [raster]: github.com/matzehuels/reqtrace/pkg/render/raster
// [graph.Layout]: github.com/matzehuels/reqtrace/pkg/graph
package render
